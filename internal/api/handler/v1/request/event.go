package request

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/studentorg/events-api/internal/domain"
)

var errBlankGroup = errors.New("priority pool groups cannot be blank")

type PriorityPoolRequest struct {
	Groups []string `json:"groups"`
}

func (p PriorityPoolRequest) Validate() error {
	if err := validation.ValidateStruct(&p, validation.Field(&p.Groups, validation.Required)); err != nil {
		return err
	}

	for _, g := range p.Groups {
		if strings.TrimSpace(g) == "" {
			return errBlankGroup
		}
	}

	return nil
}

type PaidInformationRequest struct {
	Price          int   `json:"price"`
	PaytimeSeconds int64 `json:"paytime_seconds"`
}

func (p PaidInformationRequest) Validate() error {
	return validation.ValidateStruct(
		&p,
		validation.Field(&p.Price, validation.Min(0)),
		validation.Field(&p.PaytimeSeconds, validation.Required, validation.Min(int64(1))),
	)
}

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`

	SignUp              bool       `json:"sign_up"`
	Closed              bool       `json:"closed"`
	Limit               int        `json:"limit"`
	StartRegistrationAt *time.Time `json:"start_registration_at"`
	EndRegistrationAt   *time.Time `json:"end_registration_at"`
	SignOffDeadline     *time.Time `json:"sign_off_deadline"`

	PriorityPools           []PriorityPoolRequest `json:"priority_pools"`
	OnlyAllowPrioritized    bool                  `json:"only_allow_prioritized"`
	CanCauseStrikes         bool                  `json:"can_cause_strikes"`
	EnforcesPreviousStrikes bool                  `json:"enforces_previous_strikes"`

	IsPaidEvent     bool                    `json:"is_paid_event"`
	PaidInformation *PaidInformationRequest `json:"paid_information"`
}

func (req *EventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Description, validation.Length(0, 5000)),
		validation.Field(&req.Location, validation.Length(0, 255)),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
		validation.Field(&req.Limit, validation.Min(0)),
		validation.Field(&req.PriorityPools),
		validation.Field(&req.PaidInformation),
	)
}

func (req *EventRequest) ToDomain() domain.Event {
	event := domain.Event{
		Title:                   req.Title,
		Description:             req.Description,
		Location:                req.Location,
		StartDate:               req.StartDate,
		EndDate:                 req.EndDate,
		SignUp:                  req.SignUp,
		Closed:                  req.Closed,
		Limit:                   req.Limit,
		StartRegistrationAt:     req.StartRegistrationAt,
		EndRegistrationAt:       req.EndRegistrationAt,
		SignOffDeadline:         req.SignOffDeadline,
		OnlyAllowPrioritized:    req.OnlyAllowPrioritized,
		CanCauseStrikes:         req.CanCauseStrikes,
		EnforcesPreviousStrikes: req.EnforcesPreviousStrikes,
		IsPaidEvent:             req.IsPaidEvent,
	}

	for _, p := range req.PriorityPools {
		event.PriorityPools = append(event.PriorityPools, domain.PriorityPool{Groups: p.Groups})
	}

	if req.PaidInformation != nil {
		event.PaidInformation = &domain.PaidInformation{
			Price:   req.PaidInformation.Price,
			Paytime: time.Duration(req.PaidInformation.PaytimeSeconds) * time.Second,
		}
	}

	return event
}

package domain

import (
	"errors"
	"slices"
	"time"
)

const (
	// StrikesForLongDelay and above push the registration opening back by LongStrikeDelay.
	StrikesForLongDelay = 2

	// StrikesLosingPriority and above remove priority when the event enforces previous strikes.
	StrikesLosingPriority = 3

	ShortStrikeDelay = 3 * time.Hour
	LongStrikeDelay  = 12 * time.Hour

	// SignOffGracePeriod is how close to the start a confirmed attendee can no longer sign off.
	SignOffGracePeriod = time.Hour
)

var (
	errMissingRegistrationTimes = errors.New("sign up requires start_registration_at, end_registration_at and sign_off_deadline")
	errUnexpectedRegistration   = errors.New("registration times can only be set when sign up is enabled")
	errStartAfterEnd            = errors.New("start_date must be before end_date")
	errRegistrationWindow       = errors.New("start_registration_at must be before end_registration_at")
	errRegistrationAfterStart   = errors.New("start_registration_at must be before start_date")
	errRegistrationAfterEnd     = errors.New("end_registration_at must be before end_date")
	errSignOffOutsideWindow     = errors.New("sign_off_deadline must be between start_registration_at and start_date")
	errPriorityWithoutPools     = errors.New("only_allow_prioritized requires at least one priority pool")
	errPaidWithoutInformation   = errors.New("paid events require paid_information")
)

type PriorityPool struct {
	ID      uint     `json:"id"`
	EventID uint     `json:"event_id"`
	Groups  []string `json:"groups"`
}

type PaidInformation struct {
	Price   int           `json:"price"`
	Paytime time.Duration `json:"paytime" swaggertype:"integer"`
}

type Event struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`

	SignUp              bool       `json:"sign_up"`
	Closed              bool       `json:"closed"`
	Limit               int        `json:"limit"`
	StartRegistrationAt *time.Time `json:"start_registration_at"`
	EndRegistrationAt   *time.Time `json:"end_registration_at"`
	SignOffDeadline     *time.Time `json:"sign_off_deadline"`

	PriorityPools           []PriorityPool `json:"priority_pools"`
	OnlyAllowPrioritized    bool           `json:"only_allow_prioritized"`
	CanCauseStrikes         bool           `json:"can_cause_strikes"`
	EnforcesPreviousStrikes bool           `json:"enforces_previous_strikes"`

	IsPaidEvent     bool             `json:"is_paid_event"`
	PaidInformation *PaidInformation `json:"paid_information,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLimit reports whether the event caps confirmed attendance. A limit of 0 means unlimited.
func (e Event) HasLimit() bool {
	return e.Limit != 0
}

// IsFull is only meaningful when the event has a limit.
func (e Event) IsFull(confirmed int) bool {
	return e.HasLimit() && confirmed >= e.Limit
}

func (e Event) HasPriorities() bool {
	for _, pool := range e.PriorityPools {
		if len(pool.Groups) > 0 {
			return true
		}
	}

	return false
}

// UserIsPrioritized reports whether the user belongs to any group of any pool of the event.
// Users with too many strikes lose priority on events that enforce previous strikes.
func (e Event) UserIsPrioritized(user User) bool {
	if e.EnforcesPreviousStrikes && user.Strikes >= StrikesLosingPriority {
		return false
	}

	for _, pool := range e.PriorityPools {
		for _, group := range pool.Groups {
			if slices.Contains(user.Groups, group) {
				return true
			}
		}
	}

	return false
}

// HasWaitingList reports whether new registrants would currently end up waiting or
// someone is already waiting.
func (e Event) HasWaitingList(confirmed, waiting int) bool {
	return e.HasLimit() && (e.IsFull(confirmed) || waiting > 0)
}

// RegistrationOpensAt returns when the given user may register, accounting for strikes.
func (e Event) RegistrationOpensAt(user User) time.Time {
	if e.StartRegistrationAt == nil {
		return time.Time{}
	}

	opens := *e.StartRegistrationAt
	if !e.EnforcesPreviousStrikes {
		return opens
	}

	switch {
	case user.Strikes >= StrikesForLongDelay:
		return opens.Add(LongStrikeDelay)
	case user.Strikes >= 1:
		return opens.Add(ShortStrikeDelay)
	default:
		return opens
	}
}

// SignOffDeadlinePassed reports whether a confirmed attendee signing off at now is late.
func (e Event) SignOffDeadlinePassed(now time.Time) bool {
	return e.SignOffDeadline != nil && now.After(*e.SignOffDeadline)
}

// TooCloseToStart reports whether now is inside the grace period before the event starts.
func (e Event) TooCloseToStart(now time.Time) bool {
	return !now.Before(e.StartDate.Add(-SignOffGracePeriod))
}

func (e Event) Validate() error {
	if e.Limit < 0 {
		return ErrInvalidLimit
	}

	if e.StartDate.After(e.EndDate) {
		return errStartAfterEnd
	}

	if e.OnlyAllowPrioritized && !e.HasPriorities() {
		return errPriorityWithoutPools
	}

	if e.IsPaidEvent && e.PaidInformation == nil {
		return errPaidWithoutInformation
	}

	hasTimes := e.StartRegistrationAt != nil || e.EndRegistrationAt != nil || e.SignOffDeadline != nil
	if !e.SignUp {
		if hasTimes {
			return errUnexpectedRegistration
		}

		return nil
	}

	if e.StartRegistrationAt == nil || e.EndRegistrationAt == nil || e.SignOffDeadline == nil {
		return errMissingRegistrationTimes
	}

	start, end, signOff := *e.StartRegistrationAt, *e.EndRegistrationAt, *e.SignOffDeadline

	switch {
	case start.After(end):
		return errRegistrationWindow
	case start.After(e.StartDate):
		return errRegistrationAfterStart
	case end.After(e.EndDate):
		return errRegistrationAfterEnd
	case signOff.Before(start) || signOff.After(e.StartDate):
		return errSignOffOutsideWindow
	}

	return nil
}

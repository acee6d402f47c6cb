package response

import (
	"time"

	"github.com/studentorg/events-api/internal/domain"
)

type Registration struct {
	RegistrationID  uint      `json:"registration_id"`
	EventID         uint      `json:"event_id"`
	UserID          uint      `json:"user_id"`
	IsOnWait        bool      `json:"is_on_wait"`
	HasAttended     bool      `json:"has_attended"`
	AllowPhoto      bool      `json:"allow_photo"`
	WaitQueueNumber *int      `json:"wait_queue_number"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewRegistration(r domain.Registration) Registration {
	return Registration{
		RegistrationID:  r.ID,
		EventID:         r.EventID,
		UserID:          r.UserID,
		IsOnWait:        r.IsOnWait,
		HasAttended:     r.HasAttended,
		AllowPhoto:      r.AllowPhoto,
		WaitQueueNumber: r.WaitQueueNumber,
		CreatedAt:       r.CreatedAt,
	}
}

func NewRegistrations(regs []domain.Registration) []Registration {
	out := make([]Registration, 0, len(regs))
	for _, r := range regs {
		out = append(out, NewRegistration(r))
	}

	return out
}

type Unregistered struct {
	Message string `json:"message"`
	EventID uint   `json:"event_id"`
	UserID  uint   `json:"user_id"`
}

package domain

import (
	"cmp"
	"slices"
	"time"
)

type Registration struct {
	ID            uint  `json:"registration_id"`
	EventID       uint  `json:"event_id"`
	UserID        uint  `json:"user_id"`
	QueuePosition int64 `json:"-"`

	IsOnWait    bool `json:"is_on_wait"`
	HasAttended bool `json:"has_attended"`
	AllowPhoto  bool `json:"allow_photo"`

	// WaitQueueNumber is the 1-based place in the waiting list, nil when confirmed.
	WaitQueueNumber *int `json:"wait_queue_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SwapPlacesWith exchanges the waiting state of two registrations and nothing else.
func (r *Registration) SwapPlacesWith(other *Registration) {
	r.IsOnWait, other.IsOnWait = other.IsOnWait, r.IsOnWait
}

// CompareQueue orders registrations by queue position, falling back to the lowest id.
func CompareQueue(a, b Registration) int {
	if c := cmp.Compare(a.QueuePosition, b.QueuePosition); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// AssignWaitQueueNumbers sorts regs in queue order and numbers the waiting ones.
func AssignWaitQueueNumbers(regs []Registration) {
	slices.SortFunc(regs, CompareQueue)

	n := 0
	for i := range regs {
		if !regs[i].IsOnWait {
			regs[i].WaitQueueNumber = nil
			continue
		}

		n++
		number := n
		regs[i].WaitQueueNumber = &number
	}
}

// CountConfirmed returns the number of confirmed and waiting registrations.
func CountConfirmed(regs []Registration) (confirmed, waiting int) {
	for _, r := range regs {
		if r.IsOnWait {
			waiting++
		} else {
			confirmed++
		}
	}

	return confirmed, waiting
}

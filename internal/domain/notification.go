package domain

import "time"

type NotificationKind string

const (
	NotifyConfirmed        NotificationKind = "registration.confirmed"
	NotifyWaitlisted       NotificationKind = "registration.waitlisted"
	NotifyPromoted         NotificationKind = "registration.promoted"
	NotifyDemoted          NotificationKind = "registration.demoted"
	NotifyRemoved          NotificationKind = "registration.removed"
	NotifyStrike           NotificationKind = "strike.past_deadline"
	NotifyPaymentCountdown NotificationKind = "payment.countdown"
)

const (
	// PaymentGrace is added to the event paytime before an unpaid confirmed spot is released.
	PaymentGrace = 10 * time.Minute
	// PromotedPaytime is the paytime given to registrations promoted from the waiting list.
	PromotedPaytime = 12 * time.Hour
)

// Notification is fired after a registration change commits. Delivery is up to the publisher.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	EventID    uint             `json:"event_id"`
	UserID     uint             `json:"user_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Deadline   *time.Time       `json:"deadline,omitempty"`
}

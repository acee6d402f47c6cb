package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrderNotFound        = errors.New("order not found")

	ErrAlreadyRegistered     = errors.New("user is already registered for this event")
	ErrEventClosed           = errors.New("event is closed")
	ErrSignUpDisabled        = errors.New("sign up is not enabled for this event")
	ErrRegistrationNotOpen   = errors.New("registration has not opened yet")
	ErrRegistrationClosed    = errors.New("registration has closed")
	ErrStrikeDelay           = errors.New("registration opens later for users with strikes")
	ErrOnlyPrioritized       = errors.New("only prioritized users may register for this event")
	ErrAlreadyAttended       = errors.New("registration is already marked as attended")
	ErrEventFull             = errors.New("event is full")
	ErrLimitBelowAttendees   = errors.New("limit cannot be lower than the number of attendees")
	ErrInvalidLimit          = errors.New("limit must be zero or positive")
	ErrInvalidEvent          = errors.New("invalid event")
	ErrOrderActive           = errors.New("cannot unregister while an order for this event is paid or reserved")
	ErrSignOffDeadlinePassed = errors.New("sign off deadline has passed and the event starts within an hour")

	ErrPermissionDenied = errors.New("permission denied")
)

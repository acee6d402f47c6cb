package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/studentorg/events-api/internal/admission"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/repository"
)

var (
	ErrEventNotFound        = repository.ErrEventNotFound
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrUserNotFound         = repository.ErrUserNotFound
	ErrAlreadyRegistered    = repository.ErrAlreadyRegistered

	ErrEventClosed           = domain.ErrEventClosed
	ErrSignUpDisabled        = domain.ErrSignUpDisabled
	ErrRegistrationNotOpen   = domain.ErrRegistrationNotOpen
	ErrRegistrationClosed    = domain.ErrRegistrationClosed
	ErrStrikeDelay           = domain.ErrStrikeDelay
	ErrOnlyPrioritized       = domain.ErrOnlyPrioritized
	ErrAlreadyAttended       = domain.ErrAlreadyAttended
	ErrEventFull             = domain.ErrEventFull
	ErrOrderActive           = domain.ErrOrderActive
	ErrSignOffDeadlinePassed = domain.ErrSignOffDeadlinePassed
	ErrPermissionDenied      = domain.ErrPermissionDenied
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	FindEvent(ctx context.Context, id uint) (domain.Event, error)
	ListRegistrations(ctx context.Context, eventID uint) ([]domain.Registration, error)
	InEventTx(ctx context.Context, eventID uint, fn func(ctx context.Context, store repository.EventStore) error) error
}

type RegisterInput struct {
	// UserID is honored for admins only; everyone else registers themselves.
	UserID     uint
	AllowPhoto bool
}

type UpdateRegistrationInput struct {
	IsOnWait    *bool
	HasAttended *bool
	AllowPhoto  *bool
}

type RegistrationService struct {
	repo     EventRepository
	notifier Notifier
	now      func() time.Time
}

func NewRegistrationService(repo EventRepository, notifier Notifier) *RegistrationService {
	return &RegistrationService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *RegistrationService) Register(ctx context.Context, actor domain.Actor, eventID uint, input RegisterInput) (domain.Registration, error) {
	userID := actor.UserID
	if actor.IsAdmin && input.UserID != 0 {
		userID = input.UserID
	}

	ctx, span := tracer.Start(ctx, "RegistrationService.Register", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	registration, err := s.admit(ctx, eventID, userID, input.AllowPhoto, true)

	return registration, recordErr(span, err)
}

// AddRegistration lets an admin place a user on an event regardless of the sign up window.
func (s *RegistrationService) AddRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint) (domain.Registration, error) {
	if !actor.IsAdmin {
		return domain.Registration{}, ErrPermissionDenied
	}

	ctx, span := tracer.Start(ctx, "RegistrationService.AddRegistration", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	registration, err := s.admit(ctx, eventID, userID, true, false)

	return registration, recordErr(span, err)
}

func (s *RegistrationService) admit(ctx context.Context, eventID, userID uint, allowPhoto, checkWindow bool) (domain.Registration, error) {
	var (
		created       domain.Registration
		notifications []domain.Notification
	)

	err := s.repo.InEventTx(ctx, eventID, func(ctx context.Context, store repository.EventStore) error {
		now := s.now()
		event := store.Event()

		snapshot, users, err := loadSnapshot(ctx, store, now, userID)
		if err != nil {
			return err
		}

		user, ok := users[userID]
		if !ok {
			return ErrUserNotFound
		}

		prioritized := event.UserIsPrioritized(user)
		if checkWindow {
			if err = checkCanRegister(event, user, prioritized, now); err != nil {
				return err
			}
		}

		decision, err := admission.Admit(snapshot, admission.Candidate{
			UserID:      userID,
			Prioritized: prioritized,
			AllowPhoto:  allowPhoto,
		})
		if err != nil {
			return fmt.Errorf("admission.Admit -> %w", err)
		}

		inserted, err := applyDecision(ctx, store, decision)
		if err != nil {
			return err
		}

		created, err = numbered(ctx, store, inserted.ID)
		if err != nil {
			return err
		}

		notifications = decision.Notifications

		return nil
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.InEventTx -> %w", err)
	}

	publish(ctx, s.notifier, notifications)

	return created, nil
}

func checkCanRegister(event domain.Event, user domain.User, prioritized bool, now time.Time) error {
	switch {
	case event.Closed:
		return ErrEventClosed
	case !event.SignUp:
		return ErrSignUpDisabled
	case event.StartRegistrationAt != nil && now.Before(*event.StartRegistrationAt):
		return ErrRegistrationNotOpen
	case event.EndRegistrationAt != nil && now.After(*event.EndRegistrationAt):
		return ErrRegistrationClosed
	case now.Before(event.RegistrationOpensAt(user)):
		return ErrStrikeDelay
	case event.OnlyAllowPrioritized && event.HasPriorities() && !prioritized:
		return ErrOnlyPrioritized
	}

	return nil
}

// Unregister removes the registration of userID. Members may only remove their own, and
// are held to the paid event and sign off rules; admins are not.
func (s *RegistrationService) Unregister(ctx context.Context, actor domain.Actor, eventID, userID uint) error {
	if !actor.CanManage(userID) {
		return ErrPermissionDenied
	}

	ctx, span := tracer.Start(ctx, "RegistrationService.Unregister", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	var notifications []domain.Notification

	err := s.repo.InEventTx(ctx, eventID, func(ctx context.Context, store repository.EventStore) error {
		now := s.now()
		event := store.Event()

		snapshot, _, err := loadSnapshot(ctx, store, now)
		if err != nil {
			return err
		}

		i := slices.IndexFunc(snapshot.Entries, func(e admission.Entry) bool { return e.UserID == userID })
		if i < 0 {
			return ErrRegistrationNotFound
		}
		registration := snapshot.Entries[i].Registration

		strike := false
		if !actor.IsAdmin {
			if event.IsPaidEvent {
				if err = checkOrder(ctx, store, userID); err != nil {
					return err
				}
			}

			if !registration.IsOnWait && event.SignOffDeadlinePassed(now) {
				if event.TooCloseToStart(now) {
					return ErrSignOffDeadlinePassed
				}
				strike = event.CanCauseStrikes
			}
		}

		decision, err := admission.Remove(snapshot, registration.ID)
		if err != nil {
			return fmt.Errorf("admission.Remove -> %w", err)
		}

		if _, err = applyDecision(ctx, store, decision); err != nil {
			return err
		}

		notifications = decision.Notifications
		if strike {
			notifications = append(notifications, domain.Notification{
				Kind:       domain.NotifyStrike,
				EventID:    eventID,
				UserID:     userID,
				OccurredAt: now,
			})
		}

		return nil
	})
	if err != nil {
		return recordErr(span, fmt.Errorf("s.repo.InEventTx -> %w", err))
	}

	publish(ctx, s.notifier, notifications)

	return nil
}

func checkOrder(ctx context.Context, store repository.EventStore, userID uint) error {
	order, err := store.LatestOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil
		}

		return fmt.Errorf("store.LatestOrder -> %w", err)
	}

	if order.Status.BlocksUnregister() {
		return ErrOrderActive
	}

	return nil
}

// UpdateRegistration applies an admin edit. Attendance can be recorded once.
func (s *RegistrationService) UpdateRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint, input UpdateRegistrationInput) (domain.Registration, error) {
	if !actor.IsAdmin {
		return domain.Registration{}, ErrPermissionDenied
	}

	ctx, span := tracer.Start(ctx, "RegistrationService.UpdateRegistration", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()

	var (
		updated       domain.Registration
		notifications []domain.Notification
	)

	err := s.repo.InEventTx(ctx, eventID, func(ctx context.Context, store repository.EventStore) error {
		snapshot, _, err := loadSnapshot(ctx, store, s.now())
		if err != nil {
			return err
		}

		i := slices.IndexFunc(snapshot.Entries, func(e admission.Entry) bool { return e.UserID == userID })
		if i < 0 {
			return ErrRegistrationNotFound
		}

		registration := snapshot.Entries[i].Registration
		if input.HasAttended != nil {
			if registration.HasAttended {
				return ErrAlreadyAttended
			}
			registration.HasAttended = *input.HasAttended
		}
		if input.AllowPhoto != nil {
			registration.AllowPhoto = *input.AllowPhoto
		}
		snapshot.Entries[i].Registration = registration

		var decision admission.Decision
		if input.IsOnWait != nil {
			decision, err = admission.Reassign(snapshot, registration.ID, *input.IsOnWait)
			if err != nil {
				return fmt.Errorf("admission.Reassign -> %w", err)
			}
		}

		touched := slices.ContainsFunc(decision.Updates, func(r domain.Registration) bool { return r.ID == registration.ID })
		if !touched && (input.HasAttended != nil || input.AllowPhoto != nil) {
			decision.Update(registration)
		}

		if _, err = applyDecision(ctx, store, decision); err != nil {
			return err
		}

		updated, err = numbered(ctx, store, registration.ID)
		if err != nil {
			return err
		}

		notifications = decision.Notifications

		return nil
	})
	if err != nil {
		return domain.Registration{}, recordErr(span, fmt.Errorf("s.repo.InEventTx -> %w", err))
	}

	publish(ctx, s.notifier, notifications)

	return updated, nil
}

func (s *RegistrationService) GetRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint) (domain.Registration, error) {
	if !actor.CanManage(userID) {
		return domain.Registration{}, ErrPermissionDenied
	}

	registrations, err := s.listRegistrations(ctx, eventID)
	if err != nil {
		return domain.Registration{}, err
	}

	for _, r := range registrations {
		if r.UserID == userID {
			return r, nil
		}
	}

	return domain.Registration{}, ErrRegistrationNotFound
}

func (s *RegistrationService) ListRegistrations(ctx context.Context, actor domain.Actor, eventID uint) ([]domain.Registration, error) {
	if !actor.IsAdmin {
		return nil, ErrPermissionDenied
	}

	return s.listRegistrations(ctx, eventID)
}

func (s *RegistrationService) listRegistrations(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	if _, err := s.repo.FindEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.repo.FindEvent -> %w", err)
	}

	registrations, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListRegistrations -> %w", err)
	}

	domain.AssignWaitQueueNumbers(registrations)

	return registrations, nil
}

// loadSnapshot reads the registrations of the locked event and the standing of every
// registrant. Extra user ids are loaded alongside.
func loadSnapshot(ctx context.Context, store repository.EventStore, now time.Time, extra ...uint) (admission.Snapshot, map[uint]domain.User, error) {
	return snapshotOf(ctx, store, store.Event(), now, extra...)
}

// snapshotOf builds a snapshot of the locked registrations as seen by event, which may carry
// edits not yet written through the store.
func snapshotOf(ctx context.Context, store repository.EventStore, event domain.Event, now time.Time, extra ...uint) (admission.Snapshot, map[uint]domain.User, error) {
	registrations, err := store.Registrations(ctx)
	if err != nil {
		return admission.Snapshot{}, nil, fmt.Errorf("store.Registrations -> %w", err)
	}

	ids := slices.Clone(extra)
	for _, r := range registrations {
		ids = append(ids, r.UserID)
	}

	users, err := store.Users(ctx, ids)
	if err != nil {
		return admission.Snapshot{}, nil, fmt.Errorf("store.Users -> %w", err)
	}

	snapshot := admission.Snapshot{
		Event:   event,
		Entries: make([]admission.Entry, 0, len(registrations)),
		Now:     now,
	}
	for _, r := range registrations {
		snapshot.Entries = append(snapshot.Entries, admission.Entry{
			Registration: r,
			Prioritized:  event.UserIsPrioritized(users[r.UserID]),
		})
	}

	return snapshot, users, nil
}

// applyDecision writes a decision through the store and returns the inserted registration, if any.
func applyDecision(ctx context.Context, store repository.EventStore, decision admission.Decision) (domain.Registration, error) {
	for _, id := range decision.Deletes {
		if err := store.DeleteRegistration(ctx, id); err != nil {
			return domain.Registration{}, fmt.Errorf("store.DeleteRegistration -> %w", err)
		}
	}

	for _, r := range decision.Updates {
		if err := store.UpdateRegistration(ctx, r); err != nil {
			return domain.Registration{}, fmt.Errorf("store.UpdateRegistration -> %w", err)
		}
	}

	if decision.Insert == nil {
		return domain.Registration{}, nil
	}

	inserted, err := store.InsertRegistration(ctx, *decision.Insert)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("store.InsertRegistration -> %w", err)
	}

	return inserted, nil
}

// numbered re-reads the registration with its place in the waiting list.
func numbered(ctx context.Context, store repository.EventStore, registrationID uint) (domain.Registration, error) {
	registrations, err := store.Registrations(ctx)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("store.Registrations -> %w", err)
	}

	domain.AssignWaitQueueNumbers(registrations)

	for _, r := range registrations {
		if r.ID == registrationID {
			return r, nil
		}
	}

	return domain.Registration{}, ErrRegistrationNotFound
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/studentorg/events-api/internal/admission"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/repository"
)

var (
	ErrInvalidEvent        = domain.ErrInvalidEvent
	ErrInvalidLimit        = domain.ErrInvalidLimit
	ErrLimitBelowAttendees = domain.ErrLimitBelowAttendees
)

type EventService struct {
	repo     EventRepository
	notifier Notifier
	now      func() time.Time
}

func NewEventService(repo EventRepository, notifier Notifier) *EventService {
	return &EventService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error) {
	if !actor.IsAdmin {
		return domain.Event{}, ErrPermissionDenied
	}

	if err := event.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.CreateEvent -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindEvent(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindEvent -> %w", err)
	}

	return event, nil
}

// UpdateEvent replaces the editable fields of an event. A raised limit promotes waiting
// registrations in the same transaction, judged by the new priority pools; a limit below
// the current attendee count is refused. Changing only the pools moves nobody.
func (s *EventService) UpdateEvent(ctx context.Context, actor domain.Actor, id uint, event domain.Event) (domain.Event, error) {
	if !actor.IsAdmin {
		return domain.Event{}, ErrPermissionDenied
	}

	if err := event.Validate(); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	ctx, span := tracer.Start(ctx, "EventService.UpdateEvent", trace.WithAttributes(
		attribute.Int64("event.id", int64(id)),
		attribute.Int("event.limit", event.Limit),
	))
	defer span.End()

	updated, err := s.resize(ctx, id, event.Limit, false, func(current domain.Event) domain.Event {
		event.ID = current.ID
		event.CreatedAt = current.CreatedAt
		return event
	})

	return updated, recordErr(span, err)
}

// ChangeLimit sets a new limit and rebalances the registrations. With demote set, a lower
// limit moves the surplus attendees to the waiting list instead of failing.
func (s *EventService) ChangeLimit(ctx context.Context, eventID uint, newLimit int, demote bool) (domain.Event, error) {
	ctx, span := tracer.Start(ctx, "EventService.ChangeLimit", trace.WithAttributes(
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int("event.limit", newLimit),
		attribute.Bool("demote", demote),
	))
	defer span.End()

	updated, err := s.resize(ctx, eventID, newLimit, demote, func(current domain.Event) domain.Event {
		current.Limit = newLimit
		return current
	})

	return updated, recordErr(span, err)
}

func (s *EventService) resize(ctx context.Context, eventID uint, newLimit int, demote bool, edit func(domain.Event) domain.Event) (domain.Event, error) {
	var (
		updated       domain.Event
		notifications []domain.Notification
	)

	err := s.repo.InEventTx(ctx, eventID, func(ctx context.Context, store repository.EventStore) error {
		current := store.Event()
		edited := edit(current)

		if newLimit != current.Limit {
			// Priorities come from the edited event, the starting limit from the stored one.
			seen := edited
			seen.Limit = current.Limit

			snapshot, _, err := snapshotOf(ctx, store, seen, s.now())
			if err != nil {
				return err
			}

			decision, err := admission.Resize(snapshot, newLimit, demote)
			if err != nil {
				return fmt.Errorf("admission.Resize -> %w", err)
			}

			if _, err = applyDecision(ctx, store, decision); err != nil {
				return err
			}

			notifications = decision.Notifications
		}

		var err error
		updated, err = store.UpdateEvent(ctx, edited)
		if err != nil {
			return fmt.Errorf("store.UpdateEvent -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.InEventTx -> %w", err)
	}

	publish(ctx, s.notifier, notifications)

	return updated, nil
}

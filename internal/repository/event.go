package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/repository/dao"
)

var (
	ErrEventNotFound        = dao.ErrEventNotFound
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrAlreadyRegistered    = dao.ErrAlreadyRegistered
	ErrOrderNotFound        = dao.ErrOrderNotFound
)

// EventStore is one event locked for the lifetime of a transaction, with read and write
// access to everything the admission rules look at.
type EventStore interface {
	Event() domain.Event
	Registrations(ctx context.Context) ([]domain.Registration, error)
	Users(ctx context.Context, ids []uint) (map[uint]domain.User, error)
	LatestOrder(ctx context.Context, userID uint) (domain.Order, error)
	InsertRegistration(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	UpdateRegistration(ctx context.Context, registration domain.Registration) error
	DeleteRegistration(ctx context.Context, id uint) error
	UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
}

type EventRepository struct {
	store *dao.Store
}

func NewEventRepository(store *dao.Store) *EventRepository {
	return &EventRepository{
		store: store,
	}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.store.Events.Insert(ctx, eventDomainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.store.Events.Insert -> %w", err)
	}

	return eventDAOToDomain(created), nil
}

func (r *EventRepository) FindEvent(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.store.Events.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.store.Events.FindByID -> %w", err)
	}

	return eventDAOToDomain(found), nil
}

func (r *EventRepository) ListRegistrations(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	found, err := r.store.Registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.store.Registrations.ListByEvent -> %w", err)
	}

	return registrationsDAOToDomain(found), nil
}

// InEventTx locks the event row and runs fn inside the same transaction. Any error from fn
// rolls back every write made through the store.
func (r *EventRepository) InEventTx(ctx context.Context, eventID uint, fn func(ctx context.Context, store EventStore) error) error {
	return r.store.Transaction(ctx, func(tx *dao.Store) error {
		event, err := tx.Events.FindForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("tx.Events.FindForUpdate -> %w", err)
		}

		return fn(ctx, &eventTx{tx: tx, event: eventDAOToDomain(event)})
	})
}

type eventTx struct {
	tx    *dao.Store
	event domain.Event
}

func (t *eventTx) Event() domain.Event {
	return t.event
}

func (t *eventTx) Registrations(ctx context.Context) ([]domain.Registration, error) {
	found, err := t.tx.Registrations.ListByEvent(ctx, t.event.ID)
	if err != nil {
		return nil, fmt.Errorf("t.tx.Registrations.ListByEvent -> %w", err)
	}

	return registrationsDAOToDomain(found), nil
}

func (t *eventTx) Users(ctx context.Context, ids []uint) (map[uint]domain.User, error) {
	return findUsers(ctx, t.tx.Users, ids)
}

func (t *eventTx) LatestOrder(ctx context.Context, userID uint) (domain.Order, error) {
	found, err := t.tx.Orders.FindLatest(ctx, t.event.ID, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("t.tx.Orders.FindLatest -> %w", err)
	}

	return domain.Order{
		ID:         found.ID,
		EventID:    found.EventID,
		UserID:     found.UserID,
		Status:     domain.OrderStatus(found.Status),
		ExpireDate: found.ExpireDate,
		CreatedAt:  found.CreatedAt,
	}, nil
}

func (t *eventTx) InsertRegistration(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := t.tx.Registrations.Insert(ctx, registrationDomainToDAO(registration))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("t.tx.Registrations.Insert -> %w", err)
	}

	return registrationDAOToDomain(created), nil
}

func (t *eventTx) UpdateRegistration(ctx context.Context, registration domain.Registration) error {
	if err := t.tx.Registrations.UpdateState(ctx, registrationDomainToDAO(registration)); err != nil {
		return fmt.Errorf("t.tx.Registrations.UpdateState -> %w", err)
	}

	return nil
}

func (t *eventTx) DeleteRegistration(ctx context.Context, id uint) error {
	if err := t.tx.Registrations.Delete(ctx, id); err != nil {
		return fmt.Errorf("t.tx.Registrations.Delete -> %w", err)
	}

	return nil
}

func (t *eventTx) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.ID = t.event.ID
	updated := eventDomainToDAO(event)

	if _, err := t.tx.Events.Update(ctx, updated); err != nil {
		return domain.Event{}, fmt.Errorf("t.tx.Events.Update -> %w", err)
	}

	pools, err := t.tx.Events.ReplacePriorityPools(ctx, event.ID, updated.PriorityPools)
	if err != nil {
		return domain.Event{}, fmt.Errorf("t.tx.Events.ReplacePriorityPools -> %w", err)
	}
	updated.PriorityPools = pools

	t.event = eventDAOToDomain(updated)

	return t.event, nil
}

func eventDomainToDAO(e domain.Event) dao.Event {
	out := dao.Event{
		ID:                      e.ID,
		Title:                   e.Title,
		Description:             e.Description,
		Location:                e.Location,
		StartDate:               e.StartDate,
		EndDate:                 e.EndDate,
		SignUp:                  e.SignUp,
		Closed:                  e.Closed,
		RegistrationLimit:       e.Limit,
		StartRegistrationAt:     e.StartRegistrationAt,
		EndRegistrationAt:       e.EndRegistrationAt,
		SignOffDeadline:         e.SignOffDeadline,
		OnlyAllowPrioritized:    e.OnlyAllowPrioritized,
		CanCauseStrikes:         e.CanCauseStrikes,
		EnforcesPreviousStrikes: e.EnforcesPreviousStrikes,
		IsPaidEvent:             e.IsPaidEvent,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}

	if e.PaidInformation != nil {
		price := e.PaidInformation.Price
		paytime := int64(e.PaidInformation.Paytime / time.Second)
		out.Price = &price
		out.PaytimeSeconds = &paytime
	}

	for _, p := range e.PriorityPools {
		out.PriorityPools = append(out.PriorityPools, dao.PriorityPool{
			ID:      p.ID,
			EventID: e.ID,
			Groups:  pq.StringArray(p.Groups),
		})
	}

	return out
}

func eventDAOToDomain(e dao.Event) domain.Event {
	out := domain.Event{
		ID:                      e.ID,
		Title:                   e.Title,
		Description:             e.Description,
		Location:                e.Location,
		StartDate:               e.StartDate,
		EndDate:                 e.EndDate,
		SignUp:                  e.SignUp,
		Closed:                  e.Closed,
		Limit:                   e.RegistrationLimit,
		StartRegistrationAt:     e.StartRegistrationAt,
		EndRegistrationAt:       e.EndRegistrationAt,
		SignOffDeadline:         e.SignOffDeadline,
		OnlyAllowPrioritized:    e.OnlyAllowPrioritized,
		CanCauseStrikes:         e.CanCauseStrikes,
		EnforcesPreviousStrikes: e.EnforcesPreviousStrikes,
		IsPaidEvent:             e.IsPaidEvent,
		PriorityPools:           []domain.PriorityPool{},
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}

	if e.Price != nil {
		info := domain.PaidInformation{Price: *e.Price}
		if e.PaytimeSeconds != nil {
			info.Paytime = time.Duration(*e.PaytimeSeconds) * time.Second
		}
		out.PaidInformation = &info
	}

	for _, p := range e.PriorityPools {
		out.PriorityPools = append(out.PriorityPools, domain.PriorityPool{
			ID:      p.ID,
			EventID: p.EventID,
			Groups:  []string(p.Groups),
		})
	}

	return out
}

func registrationDomainToDAO(r domain.Registration) dao.Registration {
	return dao.Registration{
		ID:            r.ID,
		EventID:       r.EventID,
		UserID:        r.UserID,
		QueuePosition: r.QueuePosition,
		IsOnWait:      r.IsOnWait,
		HasAttended:   r.HasAttended,
		AllowPhoto:    r.AllowPhoto,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func registrationDAOToDomain(r dao.Registration) domain.Registration {
	return domain.Registration{
		ID:            r.ID,
		EventID:       r.EventID,
		UserID:        r.UserID,
		QueuePosition: r.QueuePosition,
		IsOnWait:      r.IsOnWait,
		HasAttended:   r.HasAttended,
		AllowPhoto:    r.AllowPhoto,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func registrationsDAOToDomain(rs []dao.Registration) []domain.Registration {
	out := make([]domain.Registration, 0, len(rs))
	for _, r := range rs {
		out = append(out, registrationDAOToDomain(r))
	}

	return out
}

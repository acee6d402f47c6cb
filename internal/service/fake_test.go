package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/repository"
)

var errInsertFailed = errors.New("insert failed")

// fakeRepo keeps everything in memory. Writes made inside InEventTx are staged and only
// committed when the callback succeeds.
type fakeRepo struct {
	mu sync.Mutex

	events        map[uint]domain.Event
	registrations map[uint]domain.Registration
	users         map[uint]domain.User
	orders        []domain.Order

	nextID       uint
	nextPosition int64
	failInsert   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:        map[uint]domain.Event{},
		registrations: map[uint]domain.Registration{},
		users:         map[uint]domain.User{},
	}
}

func (f *fakeRepo) addUser(id uint, strikes int, groups ...string) {
	f.users[id] = domain.User{ID: id, Email: "user@example.com", Strikes: strikes, Groups: groups}
}

func (f *fakeRepo) addOrder(eventID, userID uint, status domain.OrderStatus, at time.Time) {
	f.orders = append(f.orders, domain.Order{
		ID:        uint(len(f.orders) + 1),
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: at,
	})
}

func (f *fakeRepo) state(eventID uint) map[uint]bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[uint]bool{}
	for _, r := range f.registrations {
		if r.EventID == eventID {
			out[r.UserID] = r.IsOnWait
		}
	}

	return out
}

func (f *fakeRepo) CreateEvent(_ context.Context, event domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event.ID = uint(len(f.events) + 1)
	f.events[event.ID] = event

	return event, nil
}

func (f *fakeRepo) FindEvent(_ context.Context, id uint) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return event, nil
}

func (f *fakeRepo) ListRegistrations(_ context.Context, eventID uint) ([]domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listLocked(f.registrations, eventID), nil
}

func (f *fakeRepo) listLocked(regs map[uint]domain.Registration, eventID uint) []domain.Registration {
	var out []domain.Registration
	for _, r := range regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, domain.CompareQueue)

	return out
}

func (f *fakeRepo) InEventTx(ctx context.Context, eventID uint, fn func(ctx context.Context, store repository.EventStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	tx := &fakeTx{
		repo:          f,
		event:         event,
		registrations: maps.Clone(f.registrations),
		nextID:        f.nextID,
		nextPosition:  f.nextPosition,
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	f.events[eventID] = tx.event
	f.registrations = tx.registrations
	f.nextID = tx.nextID
	f.nextPosition = tx.nextPosition

	return nil
}

type fakeTx struct {
	repo          *fakeRepo
	event         domain.Event
	registrations map[uint]domain.Registration
	nextID        uint
	nextPosition  int64
}

func (t *fakeTx) Event() domain.Event {
	return t.event
}

func (t *fakeTx) Registrations(context.Context) ([]domain.Registration, error) {
	return t.repo.listLocked(t.registrations, t.event.ID), nil
}

func (t *fakeTx) Users(_ context.Context, ids []uint) (map[uint]domain.User, error) {
	out := map[uint]domain.User{}
	for _, id := range ids {
		if u, ok := t.repo.users[id]; ok {
			out[id] = u
		}
	}

	return out, nil
}

func (t *fakeTx) LatestOrder(_ context.Context, userID uint) (domain.Order, error) {
	var latest *domain.Order
	for i, o := range t.repo.orders {
		if o.EventID != t.event.ID || o.UserID != userID {
			continue
		}
		if latest == nil || !o.CreatedAt.Before(latest.CreatedAt) {
			latest = &t.repo.orders[i]
		}
	}

	if latest == nil {
		return domain.Order{}, repository.ErrOrderNotFound
	}

	return *latest, nil
}

func (t *fakeTx) InsertRegistration(_ context.Context, registration domain.Registration) (domain.Registration, error) {
	if t.repo.failInsert {
		return domain.Registration{}, errInsertFailed
	}

	for _, r := range t.registrations {
		if r.EventID == registration.EventID && r.UserID == registration.UserID {
			return domain.Registration{}, repository.ErrAlreadyRegistered
		}
	}

	t.nextID++
	t.nextPosition++
	registration.ID = t.nextID
	registration.QueuePosition = t.nextPosition
	t.registrations[registration.ID] = registration

	return registration, nil
}

func (t *fakeTx) UpdateRegistration(_ context.Context, registration domain.Registration) error {
	current, ok := t.registrations[registration.ID]
	if !ok {
		return repository.ErrRegistrationNotFound
	}

	current.IsOnWait = registration.IsOnWait
	current.HasAttended = registration.HasAttended
	current.AllowPhoto = registration.AllowPhoto
	t.registrations[registration.ID] = current

	return nil
}

func (t *fakeTx) DeleteRegistration(_ context.Context, id uint) error {
	if _, ok := t.registrations[id]; !ok {
		return repository.ErrRegistrationNotFound
	}

	delete(t.registrations, id)

	return nil
}

func (t *fakeTx) UpdateEvent(_ context.Context, event domain.Event) (domain.Event, error) {
	event.ID = t.event.ID
	t.event = event

	return event, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
	err           error
}

func (n *fakeNotifier) Publish(_ context.Context, notifications ...domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notifications = append(n.notifications, notifications...)

	return n.err
}

func (n *fakeNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []domain.NotificationKind
	for _, x := range n.notifications {
		out = append(out, x.Kind)
	}

	return out
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentorg/events-api/internal/cache"
	"github.com/studentorg/events-api/internal/domain"
)

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.events.CreateEvent(context.Background(), member(1), openEvent(3))
	require.ErrorIs(t, err, ErrPermissionDenied)

	invalid := openEvent(3)
	invalid.SignOffDeadline = nil
	_, err = f.events.CreateEvent(context.Background(), admin, invalid)
	require.ErrorIs(t, err, ErrInvalidEvent)

	created, err := f.events.CreateEvent(context.Background(), admin, openEvent(3))
	require.NoError(t, err)

	got, err := f.events.GetEvent(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Limit)
}

func TestUpdateEvent_RaisingLimitPromotes(t *testing.T) {
	f := newFixture(t)
	for id := uint(1); id <= 4; id++ {
		f.repo.addUser(id, 0)
	}
	eventID := f.event(t, openEvent(2))
	for id := uint(1); id <= 4; id++ {
		f.register(t, eventID, id)
	}

	e := openEvent(3)
	e.Title = "Bedpres with more room"
	updated, err := f.events.UpdateEvent(context.Background(), admin, eventID, e)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Limit)
	assert.Equal(t, "Bedpres with more room", updated.Title)

	assert.Equal(t, map[uint]bool{1: false, 2: false, 3: false, 4: true}, f.repo.state(eventID))
}

func TestUpdateEvent_RaisingLimitWithoutWaitingList(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(1, 0)
	f.repo.addUser(2, 0)
	eventID := f.event(t, openEvent(2))
	f.register(t, eventID, 1)
	f.register(t, eventID, 2)

	_, err := f.events.UpdateEvent(context.Background(), admin, eventID, openEvent(3))
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: false, 2: false}, f.repo.state(eventID))
}

func TestUpdateEvent_RaisedLimitUsesNewPools(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(1, 0)
	f.repo.addUser(2, 0)
	f.repo.addUser(3, 0, "G")
	eventID := f.event(t, openEvent(1))
	for id := uint(1); id <= 3; id++ {
		f.register(t, eventID, id)
	}

	updated, err := f.events.UpdateEvent(context.Background(), admin, eventID, openEvent(2, "G"))
	require.NoError(t, err)
	assert.True(t, updated.HasPriorities())

	assert.Equal(t, map[uint]bool{1: false, 2: true, 3: false}, f.repo.state(eventID))
}

func TestUpdateEvent_PoolsOnlyMovesNobody(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(1, 0)
	f.repo.addUser(2, 0, "G")
	eventID := f.event(t, openEvent(1))
	f.register(t, eventID, 1)
	f.register(t, eventID, 2)

	_, err := f.events.UpdateEvent(context.Background(), admin, eventID, openEvent(1, "G"))
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: false, 2: true}, f.repo.state(eventID))
}

func TestUpdateEvent_LimitBelowAttendees(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(1, 0)
	f.repo.addUser(2, 0)
	eventID := f.event(t, openEvent(2))
	f.register(t, eventID, 1)
	f.register(t, eventID, 2)

	_, err := f.events.UpdateEvent(context.Background(), admin, eventID, openEvent(1))
	require.ErrorIs(t, err, ErrLimitBelowAttendees)

	got, err := f.events.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Limit)
}

func TestChangeLimit_Demotes(t *testing.T) {
	f := newFixture(t)
	f.repo.addUser(1, 0, "G")
	f.repo.addUser(2, 0)
	f.repo.addUser(3, 0)
	eventID := f.event(t, openEvent(3, "G"))
	for id := uint(1); id <= 3; id++ {
		f.register(t, eventID, id)
	}

	updated, err := f.events.ChangeLimit(context.Background(), eventID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Limit)
	assert.Equal(t, map[uint]bool{1: false, 2: true, 3: true}, f.repo.state(eventID))

	_, err = f.events.ChangeLimit(context.Background(), eventID, -1, true)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestChangeLimit_Unlimited(t *testing.T) {
	f := newFixture(t)
	for id := uint(1); id <= 3; id++ {
		f.repo.addUser(id, 0)
	}
	eventID := f.event(t, openEvent(1))
	for id := uint(1); id <= 3; id++ {
		f.register(t, eventID, id)
	}

	_, err := f.events.ChangeLimit(context.Background(), eventID, 0, false)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: false, 2: false, 3: false}, f.repo.state(eventID))
}

type fakeMemberships struct {
	groups map[uint][]string
	calls  int
}

func (m *fakeMemberships) FindGroups(_ context.Context, userID uint) ([]string, error) {
	m.calls++
	return m.groups[userID], nil
}

func TestResolveActor(t *testing.T) {
	memberships := &fakeMemberships{groups: map[uint][]string{
		1: {"abakus"},
		2: {"abakus", "webkom"},
	}}
	svc := NewActorService(
		memberships,
		cache.NewInMemory[uint, []string]("memberships", cache.DefaultExpiration, cache.DefaultCleanupInterval),
		time.Minute,
		[]string{"webkom"},
	)

	actor, err := svc.ResolveActor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: 1, Groups: []string{"abakus"}}, actor)

	actor, err = svc.ResolveActor(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin)

	_, err = svc.ResolveActor(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, memberships.calls)
}

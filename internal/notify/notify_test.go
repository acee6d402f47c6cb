package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studentorg/events-api/internal/domain"
)

type failing struct {
	err error
}

func (f failing) Publish(context.Context, ...domain.Notification) error {
	return f.err
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	deadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := NewLog(zap.New(core)).Publish(context.Background(),
		domain.Notification{Kind: domain.NotifyConfirmed, EventID: 1, UserID: 2},
		domain.Notification{Kind: domain.NotifyPaymentCountdown, EventID: 1, UserID: 2, Deadline: &deadline},
	)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "registration.confirmed", entries[0].ContextMap()["kind"])
	assert.Contains(t, entries[1].ContextMap(), "deadline")
}

func TestMulti(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	core, logs := observer.New(zap.InfoLevel)

	err := Multi{failing{errA}, NewLog(zap.New(core)), failing{errB}}.Publish(context.Background(),
		domain.Notification{Kind: domain.NotifyRemoved},
	)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	assert.Equal(t, 1, logs.Len())

	assert.NoError(t, Multi{}.Publish(context.Background()))
}

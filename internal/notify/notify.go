// Package notify delivers registration notifications to whoever sends mail and push messages.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/studentorg/events-api/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, notifications ...domain.Notification) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, notifications ...domain.Notification) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, notifications...); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Log writes notifications to the log. It is the publisher used when redis is disabled.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{
		log: log,
	}
}

func (l *Log) Publish(_ context.Context, notifications ...domain.Notification) error {
	for _, n := range notifications {
		fields := []zap.Field{
			zap.String("kind", string(n.Kind)),
			zap.Uint("event_id", n.EventID),
			zap.Uint("user_id", n.UserID),
			zap.Time("occurred_at", n.OccurredAt),
		}
		if n.Deadline != nil {
			fields = append(fields, zap.Time("deadline", *n.Deadline))
		}

		l.log.Info("notification", fields...)
	}

	return nil
}

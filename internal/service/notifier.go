package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/studentorg/events-api/internal/domain"
)

var tracer = otel.Tracer("github.com/studentorg/events-api/internal/service")

// Notifier delivers notifications once the change that produced them has committed.
type Notifier interface {
	Publish(ctx context.Context, notifications ...domain.Notification) error
}

// publish never fails the caller: the registration change is already committed.
func publish(ctx context.Context, notifier Notifier, notifications []domain.Notification) {
	if notifier == nil || len(notifications) == 0 {
		return
	}

	if err := notifier.Publish(ctx, notifications...); err != nil {
		zap.L().Error("failed to publish notifications",
			zap.Int("count", len(notifications)),
			zap.Error(err),
		)
	}
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"placement/internal/domain/interview"
	"placement/internal/domain/job"
	"placement/internal/domain/message"
	"placement/internal/observability"
)

type Logger interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// Notifier hands user-facing notifications to the delivery pipeline.
type Notifier interface {
	JobPosted(ctx context.Context, item job.Job) error
	MessagePosted(ctx context.Context, item message.Message) error
	StudentInvited(ctx context.Context, email, name, password string) error
	InterviewScheduled(ctx context.Context, item interview.Interview) error
}

type NopNotifier struct{}

func (NopNotifier) JobPosted(context.Context, job.Job) error { return nil }
func (NopNotifier) MessagePosted(context.Context, message.Message) error { return nil }
func (NopNotifier) StudentInvited(context.Context, string, string, string) error { return nil }
func (NopNotifier) InterviewScheduled(context.Context, interview.Interview) error { return nil }

type Clock func() time.Time

func analyticsPayload(ctx context.Context, payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload)+1)
	for key, value := range payload {
		out[key] = value
	}
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		out["request_id"] = requestID
	}
	return out
}

func logOrNop(logger Logger) Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

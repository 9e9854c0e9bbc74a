// Package telemetry forwards analytics events to PostHog.
package telemetry

import (
	"context"

	"github.com/posthog/posthog-go"

	"placement/internal/domain/analytics"
)

const anonymousID = "anonymous"

// Capturer is the subset of posthog.Client used by Sink.
type Capturer interface {
	Enqueue(msg posthog.Message) error
	Close() error
}

// Sink is an analytics.Repository that forwards events to PostHog.
type Sink struct {
	client Capturer
}

func NewPostHog(apiKey, endpoint string) (*Sink, error) {
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	return &Sink{client: client}, nil
}

func NewSink(client Capturer) *Sink {
	return &Sink{client: client}
}

func (s *Sink) Create(_ context.Context, event analytics.Event) error {
	distinctID := anonymousID
	if event.UserID != nil && *event.UserID != "" {
		distinctID = event.UserID.String()
	}
	properties := posthog.NewProperties()
	for key, value := range event.Payload {
		properties.Set(key, value)
	}
	capture := posthog.Capture{
		DistinctId: distinctID,
		Event:      event.Name,
		Properties: properties,
	}
	if !event.CreatedAt.IsZero() {
		capture.Timestamp = event.CreatedAt
	}
	if err := capture.Validate(); err != nil {
		return err
	}
	return s.client.Enqueue(capture)
}

func (s *Sink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

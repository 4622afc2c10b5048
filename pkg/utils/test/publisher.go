package testutils

import (
	"context"
	"fmt"

	"github.com/echoguardhq/echoguard/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records published events.
type MockPublisher struct {
	// Published accumulates all events passed to PublishDecision.
	Published []*eventstream.DecisionRecordedEvent

	// FailPublish causes PublishDecision to return an error.
	FailPublish bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Published: make([]*eventstream.DecisionRecordedEvent, 0),
	}
}

func (m *MockPublisher) PublishDecision(_ context.Context, event *eventstream.DecisionRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilDecisionEvent
	}
	if m.FailPublish {
		return fmt.Errorf("mock publish failure")
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

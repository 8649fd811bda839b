// Package notify publishes recorded trigger events to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Event envelope defaults.
const (
	DefaultSource  = "tagwatch"
	DetailType     = "tagwatch.trigger"
	publishTimeout = 5 * time.Second
)

// EventBridgeAPI is the subset of the EventBridge client used by EventBridgeSink.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, input *eventbridge.PutEventsInput, opts ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSink publishes trigger events onto an EventBridge bus.
type EventBridgeSink struct {
	client  EventBridgeAPI
	busName string
	source  string
}

// EventBridgeOption configures an EventBridgeSink.
type EventBridgeOption func(*EventBridgeSink)

// WithEventBridgeClient sets a custom client (useful for testing).
func WithEventBridgeClient(c EventBridgeAPI) EventBridgeOption {
	return func(s *EventBridgeSink) { s.client = c }
}

// WithSource overrides the event source.
func WithSource(source string) EventBridgeOption {
	return func(s *EventBridgeSink) {
		if source != "" {
			s.source = source
		}
	}
}

// NewEventBridgeSink creates a sink for busName.
func NewEventBridgeSink(ctx context.Context, busName string, opts ...EventBridgeOption) (*EventBridgeSink, error) {
	if busName == "" {
		return nil, fmt.Errorf("EventBridge bus name required")
	}
	s := &EventBridgeSink{busName: busName, source: DefaultSource}
	for _, o := range opts {
		o(s)
	}
	if s.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		s.client = eventbridge.NewFromConfig(cfg)
	}
	return s, nil
}

// Publish sends ev as the detail of a single event.
func (s *EventBridgeSink) Publish(ctx context.Context, ev types.TriggerEvent) error {
	detail, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling trigger event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	out, err := s.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{{
			EventBusName: aws.String(s.busName),
			Source:       aws.String(s.source),
			DetailType:   aws.String(DetailType),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(ev.Timestamp),
		}},
	})
	if err != nil {
		return fmt.Errorf("publishing to EventBridge: %w", err)
	}
	if out.FailedEntryCount > 0 && len(out.Entries) > 0 {
		e := out.Entries[0]
		return fmt.Errorf("EventBridge rejected event: %s: %s",
			aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
	}
	return nil
}

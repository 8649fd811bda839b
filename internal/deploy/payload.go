package deploy

import (
	"encoding/json"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/oklog/ulid/v2"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// CloudEvents attributes of the deploy request envelope.
const (
	ceType          = "dev.tagwatch.deploy.requested"
	ceSourcePrefix  = "tagwatch/"
	contentTypeJSON = "application/json"
)

// Payload is the body posted to the deploy webhook.
type Payload struct {
	Reason     string `json:"reason"`
	Tag        string `json:"tag"`
	Repository string `json:"repository"`
	Timestamp  string `json:"timestamp"`
}

func newPayload(marker types.VersionMarker, kind types.TriggerKind, repository string, now time.Time) Payload {
	return Payload{
		Reason:     kind.Reason(),
		Tag:        marker.String(),
		Repository: repository,
		Timestamp:  now.UTC().Format(types.TimeFormat),
	}
}

// encode renders the payload in the configured wire format and returns the
// body with its content type.
func encode(format types.WebhookFormat, p Payload, now time.Time) ([]byte, string, error) {
	switch format {
	case "", types.WebhookFormatJSON:
		body, err := json.Marshal(p)
		return body, contentTypeJSON, err
	case types.WebhookFormatCloudEvents:
		e := cloudevents.NewEvent()
		e.SetID(ulid.Make().String())
		e.SetSource(ceSourcePrefix + p.Repository)
		e.SetType(ceType)
		e.SetSubject(p.Tag)
		e.SetTime(now.UTC())
		if err := e.SetData(cloudevents.ApplicationJSON, p); err != nil {
			return nil, "", fmt.Errorf("setting cloudevent data: %w", err)
		}
		if err := e.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid cloudevent: %w", err)
		}
		body, err := json.Marshal(e)
		return body, cloudevents.ApplicationCloudEventsJSON, err
	default:
		return nil, "", fmt.Errorf("unknown webhook format %q", format)
	}
}

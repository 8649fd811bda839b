// Package types defines the public domain types for tagwatch.
package types

// Outcome is the result of a single deployment trigger attempt.
type Outcome string

// Outcome values.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// TriggerKind records what initiated a trigger attempt.
type TriggerKind string

// TriggerKind values.
const (
	TriggerScheduled TriggerKind = "scheduled"
	TriggerManual    TriggerKind = "manual"
)

// Reason returns the webhook payload reason for the trigger kind.
func (k TriggerKind) Reason() string {
	if k == TriggerManual {
		return "manual_trigger"
	}
	return "new_release"
}

// CheckStatus is the outcome of one check-and-trigger pass.
type CheckStatus string

// CheckStatus values.
const (
	CheckNoUpdate      CheckStatus = "no_update"
	CheckTriggered     CheckStatus = "triggered"
	CheckTriggerFailed CheckStatus = "trigger_failed"
	CheckFetchFailed   CheckStatus = "fetch_failed"
	CheckStoreFailed   CheckStatus = "store_error"
	CheckSkipped       CheckStatus = "skipped"
)

// WebhookFormat selects the wire envelope of the deploy webhook body.
type WebhookFormat string

// WebhookFormat values.
const (
	WebhookFormatJSON        WebhookFormat = "json"
	WebhookFormatCloudEvents WebhookFormat = "cloudevents"
)

// StoreBackend names a state store implementation.
type StoreBackend string

// StoreBackend values.
const (
	StoreDynamoDB StoreBackend = "dynamodb"
	StoreMemory   StoreBackend = "memory"
)

// Package lambda provides shared types and initialization for Lambda handlers.
package lambda

// Check modes accepted by the checker Lambda.
const (
	ModeScheduled = "scheduled"
	ModeManual    = "manual"
)

// CheckRequest is the input to the checker Lambda. EventBridge Scheduler
// sends either an empty object or {"mode":"scheduled"}.
type CheckRequest struct {
	Mode string `json:"mode,omitempty"`
}

// CheckResponse is the output of the checker Lambda. Failures are reported
// in Error rather than as an invocation error so the scheduler does not
// retry the pass.
type CheckResponse struct {
	Mode        string `json:"mode"`
	Status      string `json:"status,omitempty"`
	Tag         string `json:"tag,omitempty"`
	PreviousTag string `json:"previousTag,omitempty"`
	Triggered   bool   `json:"triggered"`
	EventKey    string `json:"eventKey,omitempty"`
	Timestamp   string `json:"timestamp"`
	Error       string `json:"error,omitempty"`
}

package types

import "time"

// DefaultRepository is the upstream repository watched when none is configured.
const DefaultRepository = "dwsmith1983/interlock"

// TimeFormat is the ISO-8601 layout used for persisted timestamps.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Sentinel strings reported by status when state is absent.
const (
	NoMarker   = "none"
	NeverCheck = "never"
)

// VersionMarker is an opaque upstream version identifier, usually a release tag.
// Equality is exact string comparison. The empty marker means absent.
type VersionMarker string

// IsZero reports whether the marker is absent.
func (m VersionMarker) IsZero() bool { return m == "" }

// String returns the marker text.
func (m VersionMarker) String() string { return string(m) }

// Ptr returns nil for the absent marker, otherwise a pointer to its text.
// Used where absent must serialize as JSON null.
func (m VersionMarker) Ptr() *string {
	if m.IsZero() {
		return nil
	}
	s := string(m)
	return &s
}

// CheckState is the singleton record mutated after every check.
type CheckState struct {
	LatestMarker VersionMarker `json:"latestMarker,omitempty"`
	LastCheck    *time.Time    `json:"lastCheck,omitempty"`
}

// TriggerEvent is an immutable log record of one deployment trigger attempt.
type TriggerEvent struct {
	Tag         VersionMarker `json:"tag"`
	PreviousTag VersionMarker `json:"previousTag,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Outcome     Outcome       `json:"outcome"`
	Trigger     TriggerKind   `json:"trigger"`
	Repository  string        `json:"repository,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// CheckResult describes what a check-and-trigger pass did.
type CheckResult struct {
	Status    CheckStatus   `json:"status"`
	OldMarker VersionMarker `json:"oldMarker,omitempty"`
	NewMarker VersionMarker `json:"newMarker,omitempty"`
	CheckedAt time.Time     `json:"checkedAt"`
	Error     string        `json:"error,omitempty"`
	EventKey  string        `json:"eventKey,omitempty"`
}

// Triggered reports whether the pass invoked the deploy webhook successfully.
func (r *CheckResult) Triggered() bool { return r != nil && r.Status == CheckTriggered }

// ManualResult describes a manual trigger attempt.
type ManualResult struct {
	Marker      VersionMarker `json:"marker,omitempty"`
	TriggeredAt time.Time     `json:"triggeredAt"`
	Error       string        `json:"error,omitempty"`
	EventKey    string        `json:"eventKey,omitempty"`
}

// StatusSnapshot is the rendered view of the state store.
type StatusSnapshot struct {
	Status            string         `json:"status"`
	CurrentTag        string         `json:"currentTag"`
	LastCheck         string         `json:"lastCheck"`
	RecentDeployments []TriggerEvent `json:"recentDeployments"`
	Repository        string         `json:"repository"`
}

package handlers

import (
	"net/http"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// TriggeredResponse is returned when a new release was deployed. OldTag is
// null on the first run.
type TriggeredResponse struct {
	Message             string  `json:"message"`
	OldTag              *string `json:"oldTag"`
	NewTag              string  `json:"newTag"`
	DeploymentTriggered bool    `json:"deploymentTriggered"`
	Timestamp           string  `json:"timestamp"`
}

// NoUpdateResponse is returned when the upstream tag is unchanged.
type NoUpdateResponse struct {
	Message    string `json:"message"`
	CurrentTag string `json:"currentTag"`
	LastCheck  string `json:"lastCheck"`
}

// SkippedResponse is returned when another check holds the lease.
type SkippedResponse struct {
	Message   string `json:"message"`
	Skipped   bool   `json:"skipped"`
	Timestamp string `json:"timestamp"`
}

// NewCheckResponse renders a successful check result.
func NewCheckResponse(res *types.CheckResult) any {
	ts := res.CheckedAt.Format(types.TimeFormat)
	switch res.Status {
	case types.CheckTriggered:
		return TriggeredResponse{
			Message:             MsgTriggered,
			OldTag:              res.OldMarker.Ptr(),
			NewTag:              res.NewMarker.String(),
			DeploymentTriggered: true,
			Timestamp:           ts,
		}
	case types.CheckSkipped:
		return SkippedResponse{Message: MsgCheckSkipped, Skipped: true, Timestamp: ts}
	default:
		return NoUpdateResponse{Message: MsgNoUpdate, CurrentTag: res.NewMarker.String(), LastCheck: ts}
	}
}

// CheckUpdates runs one check-and-trigger pass.
func (h *Handlers) CheckUpdates(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CheckForUpdates(r.Context())
	if err != nil {
		body := ErrorBody{}
		if res != nil && res.Status == types.CheckTriggerFailed {
			newTag := res.NewMarker.String()
			body.OldTag = res.OldMarker.Ptr()
			body.NewTag = &newTag
		}
		h.fail(w, r, classify(err, MsgTriggerFailed), err, body)
		return
	}
	writeJSON(w, http.StatusOK, NewCheckResponse(res))
}

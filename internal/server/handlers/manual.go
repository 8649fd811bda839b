package handlers

import (
	"net/http"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// ManualResponse is the success body of POST /manual-trigger.
type ManualResponse struct {
	Message   string `json:"message"`
	Tag       string `json:"tag"`
	Timestamp string `json:"timestamp"`
}

// ManualTrigger deploys the current upstream marker unconditionally.
func (h *Handlers) ManualTrigger(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ManualTrigger(r.Context())
	if err != nil {
		body := ErrorBody{}
		if res != nil {
			body.Tag = res.Marker.Ptr()
		}
		h.fail(w, r, classify(err, MsgManualFailed), err, body)
		return
	}
	writeJSON(w, http.StatusOK, ManualResponse{
		Message:   MsgManualTriggered,
		Tag:       res.Marker.String(),
		Timestamp: res.TriggeredAt.Format(types.TimeFormat),
	})
}

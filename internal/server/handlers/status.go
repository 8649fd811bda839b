package handlers

import (
	"net/http"
)

// Status renders the state store snapshot.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Status(r.Context())
	if err != nil {
		msg := classify(err, MsgStatusFailed)
		if msg == MsgInternalError {
			msg = MsgStatusFailed
		}
		h.fail(w, r, msg, err, ErrorBody{})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

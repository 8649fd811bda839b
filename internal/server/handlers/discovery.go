package handlers

import "net/http"

// DiscoveryResponse lists the available endpoints.
type DiscoveryResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Discovery answers every unmatched route.
func (h *Handlers) Discovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DiscoveryResponse{
		Message: "tagwatch deployment trigger",
		Endpoints: map[string]string{
			"GET /check-updates":   "Check for a new release and trigger deployment",
			"POST /manual-trigger": "Trigger deployment of the latest release",
			"GET /status":          "Current tag, last check and recent deployments",
		},
	})
}

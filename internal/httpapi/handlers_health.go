package httpapi

import "net/http"

// handleLiveness always reports 200 plain text: the process is up and
// serving requests (spec §6).
func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReadiness pings storage through deps.ReadyCheck and reports
// whether the instance can actually serve traffic, not just that the
// process started (spec §6).
func handleReadiness(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.ReadyCheck == nil {
			writeData(w, http.StatusOK, map[string]bool{"ready": true})
			return
		}
		if err := deps.ReadyCheck(); err != nil {
			writeData(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
			return
		}
		writeData(w, http.StatusOK, map[string]bool{"ready": true})
	}
}

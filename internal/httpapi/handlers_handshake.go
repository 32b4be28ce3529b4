package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/internal/discovery"
	"github.com/parkhub/parkhub-server/pkg/version"
)

// handleHandshake negotiates the wire protocol version before a client
// attempts to authenticate (spec §4.H). A mismatch is reported as a 200
// response carrying a ProtocolMismatch error code, not an HTTP error
// status, so older clients that don't expect 4xx on this route still
// surface the message.
func handleHandshake(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discovery.HandshakeRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		resp, ok := deps.Handshaker.Negotiate(req)
		if !ok {
			writeServiceError(w, r, deps.Logger, errors.ProtocolMismatch(req.ClientVersion, version.Version))
			return
		}
		writeData(w, http.StatusOK, resp)
	}
}

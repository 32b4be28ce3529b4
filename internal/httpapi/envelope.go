// Package httpapi wires ParkHub's HTTP surface: routing, middleware
// composition, and handlers for every route in the public and protected
// route groups (spec §4.E, §6).
package httpapi

import (
	stderrors "errors"
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/infrastructure/security"
)

// envelope is the uniform response shape (spec §6).
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	httputil.WriteJSON(w, status, envelope{Success: true, Data: data})
}

func writeOK(w http.ResponseWriter) {
	writeData(w, http.StatusOK, nil)
}

// writeServiceError unwraps a *errors.ServiceError (or falls back to an
// opaque 500) and writes the envelope's error branch. Password hashes and
// wrapped internal errors never reach Details (spec §4.I).
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		if logger != nil {
			sanitized := stderrors.New(security.SanitizeError(err))
			logger.Error(r.Context(), "unhandled error reached httpapi envelope", sanitized, nil)
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Error:   &errorBody{Code: "SERVER_ERROR", Message: "internal server error"},
		})
		return
	}

	if logger != nil && svcErr.Err != nil {
		logger.WithContext(r.Context()).WithError(stderrors.New(security.SanitizeError(svcErr.Err))).Warn("service error")
	}

	httputil.WriteJSON(w, svcErr.HTTPStatus, envelope{
		Success: false,
		Error:   &errorBody{Code: string(svcErr.Code), Message: svcErr.Message, Details: svcErr.Details},
	})
}

package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
)

func handleGetMe(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}
		user, err := deps.Store.GetUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.NotFound("user", userID))
			return
		}
		writeData(w, http.StatusOK, user.Redacted())
	}
}

func handleGetUserByID(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		id := muxVar(r, "id")
		user, err := deps.Store.GetUser(id)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.NotFound("user", id))
			return
		}
		writeData(w, http.StatusOK, user.Redacted())
	}
}

// userExport is the full data set returned for a GDPR Art. 15/20 export
// request (spec §4.G): the account, every vehicle, and every booking owned
// by the caller.
type userExport struct {
	User     interface{} `json:"user"`
	Vehicles interface{} `json:"vehicles"`
	Bookings interface{} `json:"bookings"`
}

func handleExportMe(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		user, err := deps.Store.GetUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.NotFound("user", userID))
			return
		}
		vehicles, err := deps.Store.ListVehiclesByUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to export vehicles", err))
			return
		}
		bookings, err := deps.Booking.ListForUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}

		writeData(w, http.StatusOK, userExport{
			User:     user.Redacted(),
			Vehicles: vehicles,
			Bookings: bookings,
		})
	}
}

// handleDeleteMe anonymizes the caller's own account in place (GDPR Art.
// 17), leaving historical bookings intact with PII blanked rather than
// deleting the row outright (spec §4.A, §4.G).
func handleDeleteMe(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}
		if err := deps.Store.AnonymizeUser(userID); err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to anonymize account", err))
			return
		}
		writeOK(w)
	}
}

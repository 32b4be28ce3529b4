package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
)

func handleAdminListUsers(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		users, err := deps.Users.ListUsers()
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to list users", err))
			return
		}
		redacted := make([]interface{}, 0, len(users))
		for _, u := range users {
			redacted = append(redacted, u.Redacted())
		}
		writeData(w, http.StatusOK, redacted)
	}
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func handleAdminChangeRole(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		var req changeRoleRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
		user, err := deps.Users.ChangeRole(muxVar(r, "id"), req.Role)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, user)
	}
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func handleAdminChangeStatus(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		var req changeStatusRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
		user, err := deps.Users.ChangeStatus(muxVar(r, "id"), req.Status)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, user)
	}
}

func handleAdminDeleteUser(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		if err := deps.Users.DeleteUser(callerID, muxVar(r, "id")); err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeOK(w)
	}
}

func handleAdminListBookings(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		views, err := deps.Booking.ListAllForAdmin()
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to list bookings", err))
			return
		}
		writeData(w, http.StatusOK, views)
	}
}

func handleAdminStats(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		stats, err := deps.Store.Statistics()
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to gather statistics", err))
			return
		}
		writeData(w, http.StatusOK, stats)
	}
}

package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/internal/domain"
)

func handleListBookings(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}
		bookings, err := deps.Booking.ListForUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, bookings)
	}
}

func handleCreateBooking(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		var req domain.CreateBookingRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		owner, err := deps.Store.GetUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}

		booking, err := deps.Booking.CreateBooking(r.Context(), userID, owner.Email, req)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusCreated, booking)
	}
}

func handleGetBooking(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		id := muxVar(r, "id")
		booking, err := deps.Store.GetBooking(id)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		if booking.UserID != userID && !httputil.RequireAdminRole(w, r) {
			return
		}
		writeData(w, http.StatusOK, booking)
	}
}

func handleCancelBooking(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		id := muxVar(r, "id")
		if err := deps.Booking.CancelBooking(r.Context(), userID, id); err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeOK(w)
	}
}

package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/internal/domain"
)

func handleListLots(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lots, err := deps.Lots.ListLots()
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, lots)
	}
}

func handleCreateLot(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}

		var req domain.ParkingLot
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		lot, err := deps.Lots.CreateLot(req)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusCreated, lot)
	}
}

func handleGetLot(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lot, err := deps.Lots.GetLot(muxVar(r, "id"))
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, lot)
	}
}

func handleListSlots(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID := httputil.GetUserID(r)
		slots, err := deps.Lots.ListSlots(muxVar(r, "id"), viewerID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, slots)
	}
}

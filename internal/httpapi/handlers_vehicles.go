package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/internal/domain"
)

func handleListVehicles(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}
		vehicles, err := deps.Store.ListVehiclesByUser(userID)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to list vehicles", err))
			return
		}
		writeData(w, http.StatusOK, vehicles)
	}
}

type createVehicleRequest struct {
	LicensePlate string             `json:"license_plate"`
	Make         string             `json:"make,omitempty"`
	Model        string             `json:"model,omitempty"`
	Color        string             `json:"color,omitempty"`
	VehicleType  domain.VehicleType `json:"vehicle_type"`
	IsDefault    bool               `json:"is_default"`
}

func handleCreateVehicle(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		var req createVehicleRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
		if req.LicensePlate == "" {
			writeServiceError(w, r, deps.Logger, errors.InvalidInput("license_plate", "required"))
			return
		}

		vehicle := domain.Vehicle{
			ID:           uuid.NewString(),
			UserID:       userID,
			LicensePlate: req.LicensePlate,
			Make:         req.Make,
			Model:        req.Model,
			Color:        req.Color,
			VehicleType:  req.VehicleType,
			IsDefault:    req.IsDefault,
			CreatedAt:    time.Now(),
		}
		if err := deps.Store.SaveVehicle(vehicle); err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to persist vehicle", err))
			return
		}
		writeData(w, http.StatusCreated, vehicle)
	}
}

func handleDeleteVehicle(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.RequireUserID(w, r)
		if !ok {
			return
		}

		id := muxVar(r, "id")
		vehicle, err := deps.Store.GetVehicle(id)
		if err != nil {
			writeServiceError(w, r, deps.Logger, errors.NotFound("vehicle", id))
			return
		}
		if vehicle.UserID != userID {
			writeServiceError(w, r, deps.Logger, errors.Forbidden("vehicle belongs to another user"))
			return
		}
		if err := deps.Store.DeleteVehicle(id); err != nil {
			writeServiceError(w, r, deps.Logger, errors.ServerError("failed to delete vehicle", err))
			return
		}
		writeOK(w)
	}
}

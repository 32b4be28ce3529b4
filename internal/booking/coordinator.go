// Package booking implements the booking coordinator: the single
// process-wide lock that makes create/cancel-booking atomic against the
// slot availability state machine (spec §4.F).
package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/domain"
	"github.com/parkhub/parkhub-server/internal/storage"
)

const (
	currency     = "EUR"
	hourlyRate   = 2.00
	taxRate      = 0.10
	fallbackFloor = "Level 1"
)

// Notifier dispatches a side-channel confirmation for a freshly created
// booking. Its failure never fails the request (spec §4.F).
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, booking domain.Booking, ownerEmail string)
}

// Coordinator serializes every state transition of the slot availability
// machine behind a single process-wide lock, held in write mode across the
// whole create/cancel sequence (spec §4.F, §5, invariant 3).
type Coordinator struct {
	store    *storage.Store
	logger   *logging.Logger
	notifier Notifier
	mu       sync.RWMutex
	now      func() time.Time
}

// New builds a Coordinator over store. notifier may be nil, in which case
// booking confirmation is a silent no-op.
func New(store *storage.Store, logger *logging.Logger, notifier Notifier) *Coordinator {
	return &Coordinator{store: store, logger: logger, notifier: notifier, now: time.Now}
}

// CreateBooking executes the full create-booking sequence — read slot,
// verify Available, compute booking, write booking, flip slot to Reserved
// — as one indivisible block under the coordinator's write lock. Exactly
// one concurrent caller for a given slot succeeds; the rest observe
// SlotUnavailable.
func (c *Coordinator) CreateBooking(ctx context.Context, userID, ownerEmail string, req domain.CreateBookingRequest) (domain.Booking, error) {
	if req.DurationMinutes <= 0 {
		return domain.Booking{}, errors.InvalidInput("duration_minutes", "must be at least 1")
	}

	now := c.now()
	if !req.StartTime.After(now) {
		return domain.Booking{}, errors.InvalidBookingTime()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	slot, err := c.store.GetSlot(req.SlotID)
	if err != nil {
		return domain.Booking{}, errors.NotFound("slot", req.SlotID)
	}
	if slot.LotID != req.LotID {
		return domain.Booking{}, errors.NotFound("slot", req.SlotID)
	}
	if slot.Status != domain.SlotAvailable {
		return domain.Booking{}, errors.SlotUnavailable(req.SlotID)
	}

	vehicle, err := c.resolveVehicle(userID, req)
	if err != nil {
		return domain.Booking{}, err
	}

	booking := domain.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		LotID:      req.LotID,
		SlotID:     req.SlotID,
		SlotNumber: slot.SlotNumber,
		FloorName:  c.resolveFloorName(req.LotID, slot.FloorID),
		Vehicle:    vehicle,
		StartTime:  req.StartTime,
		EndTime:    req.StartTime.Add(time.Duration(req.DurationMinutes) * time.Minute),
		Status:     domain.BookingConfirmed,
		Pricing:    computePricing(req.DurationMinutes),
		CreatedAt:  now,
		UpdatedAt:  now,
		Notes:      req.Notes,
	}

	if err := c.store.SaveBooking(booking); err != nil {
		return domain.Booking{}, errors.ServerError("failed to persist booking", err)
	}

	slot.Status = domain.SlotReserved
	slot.CurrentBooking = &domain.SlotBookingInfo{
		BookingID:    booking.ID,
		UserID:       userID,
		LicensePlate: vehicle.LicensePlate,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
	}
	if err := c.store.SaveSlot(slot); err != nil {
		c.logger.Error(ctx, "slot status update failed after booking write", err, map[string]interface{}{
			"booking_id": booking.ID,
			"slot_id":    slot.ID,
		})
		return domain.Booking{}, errors.SlotUpdateFailed(booking.ID, err)
	}

	c.logger.LogBookingEvent(ctx, booking.ID, slot.ID, "created", nil)

	if c.notifier != nil {
		c.notifier.NotifyBookingConfirmed(ctx, booking, ownerEmail)
	}

	return booking, nil
}

// resolveVehicle authorizes the request's vehicle reference: an existing
// vehicle must belong to userID; otherwise an ephemeral snapshot is built
// from the supplied license plate (spec §4.F).
func (c *Coordinator) resolveVehicle(userID string, req domain.CreateBookingRequest) (domain.Vehicle, error) {
	if req.VehicleID == "" {
		return domain.Vehicle{
			ID:           uuid.NewString(),
			UserID:       userID,
			LicensePlate: req.LicensePlate,
			CreatedAt:    c.now(),
		}, nil
	}

	vehicle, err := c.store.GetVehicle(req.VehicleID)
	if err != nil {
		return domain.Vehicle{
			ID:           uuid.NewString(),
			UserID:       userID,
			LicensePlate: req.LicensePlate,
			CreatedAt:    c.now(),
		}, nil
	}
	if vehicle.UserID != userID {
		return domain.Vehicle{}, errors.Forbidden("vehicle does not belong to the requesting user")
	}
	return vehicle, nil
}

// resolveFloorName looks up the lot's floor list for a human-readable name
// matching floorID; the storage layer keeps no separate floor registry
// (spec §9's id-index model reconstructs floors from slots on read), so in
// practice this is always unresolvable here and the literal "Level 1" is
// stored to keep the booking record self-describing (spec §4.F).
func (c *Coordinator) resolveFloorName(lotID, floorID string) string {
	lot, err := c.store.GetLot(lotID)
	if err != nil {
		return fallbackFloor
	}
	for _, floor := range lot.Floors {
		if floor.ID == floorID && floor.Name != "" {
			return floor.Name
		}
	}
	return fallbackFloor
}

// computePricing applies the fixed hourly rate schedule (spec §4.F): base =
// (duration/60) * hourlyRate, tax = base * taxRate, total = base + tax.
func computePricing(durationMinutes int) domain.BookingPricing {
	base := (float64(durationMinutes) / 60.0) * hourlyRate
	tax := base * taxRate
	return domain.BookingPricing{
		BasePrice:     round2(base),
		Tax:           round2(tax),
		Total:         round2(base + tax),
		Currency:      currency,
		PaymentStatus: domain.PaymentPending,
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// CancelBooking marks a booking Cancelled and, only if the slot's current
// status is still Reserved, restores it to Available. Slots left in
// Maintenance or Disabled by an operator are untouched (spec §4.F).
func (c *Coordinator) CancelBooking(ctx context.Context, userID, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	booking, err := c.store.GetBooking(bookingID)
	if err != nil {
		return errors.NotFound("booking", bookingID)
	}
	if booking.UserID != userID {
		return errors.Forbidden("booking does not belong to the requesting user")
	}
	if booking.Status == domain.BookingCancelled {
		return errors.AlreadyCancelled(bookingID)
	}

	now := c.now()
	booking.Status = domain.BookingCancelled
	booking.UpdatedAt = now
	if err := c.store.SaveBooking(booking); err != nil {
		return errors.ServerError("failed to persist cancellation", err)
	}

	slot, err := c.store.GetSlot(booking.SlotID)
	if err == nil && slot.Status == domain.SlotReserved {
		slot.Status = domain.SlotAvailable
		slot.CurrentBooking = nil
		if err := c.store.SaveSlot(slot); err != nil {
			c.logger.Error(ctx, "failed to restore slot availability on cancel", err, map[string]interface{}{
				"booking_id": bookingID,
				"slot_id":    booking.SlotID,
			})
		}
	}

	c.logger.LogBookingEvent(ctx, bookingID, booking.SlotID, "cancelled", nil)
	return nil
}

// ListForUser returns every booking owned by userID.
func (c *Coordinator) ListForUser(userID string) ([]domain.Booking, error) {
	return c.store.ListBookingsByUser(userID)
}

// AdminBookingView enriches a raw booking with owner/lot display fields for
// the admin listing (spec §4.F); missing joins degrade to the raw id.
type AdminBookingView struct {
	domain.Booking
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
	LotName    string `json:"lot_name"`
}

// ListAllForAdmin returns every booking enriched with owner and lot names,
// best-effort.
func (c *Coordinator) ListAllForAdmin() ([]AdminBookingView, error) {
	bookings, err := c.store.ListAllBookings()
	if err != nil {
		return nil, err
	}

	out := make([]AdminBookingView, 0, len(bookings))
	for _, b := range bookings {
		view := AdminBookingView{Booking: b, OwnerName: b.UserID, OwnerEmail: b.UserID, LotName: b.LotID}
		if user, err := c.store.GetUser(b.UserID); err == nil {
			view.OwnerName = user.Name
			view.OwnerEmail = user.Email
		}
		if lot, err := c.store.GetLot(b.LotID); err == nil {
			view.LotName = lot.Name
		}
		out = append(out, view)
	}
	return out, nil
}

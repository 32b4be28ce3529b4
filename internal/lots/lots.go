// Package lots implements parking lot/floor/slot management and the
// read-side view reconstruction mandated by spec §9's id-index model:
// a lot's floors and slots are never persisted embedded, only assembled
// on read from the slots_by_lot index.
package lots

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/internal/domain"
	"github.com/parkhub/parkhub-server/internal/storage"
)

// Service implements lot/floor/slot CRUD and read-view assembly over the
// store.
type Service struct {
	store *storage.Store
	now   func() time.Time
}

// New builds a Service over store.
func New(store *storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateLot persists a new lot. Caller-supplied floors/slots are not
// stored (SaveLot drops Floors); slots are added separately via CreateSlot.
func (s *Service) CreateLot(lot domain.ParkingLot) (domain.ParkingLot, error) {
	lot.ID = uuid.NewString()
	now := s.now()
	lot.CreatedAt = now
	lot.UpdatedAt = now
	if lot.Status == "" {
		lot.Status = domain.LotOpen
	}
	if err := s.store.SaveLot(lot); err != nil {
		return domain.ParkingLot{}, errors.ServerError("failed to persist lot", err)
	}
	return s.GetLot(lot.ID)
}

// GetLot returns a lot with its floors and slots reconstructed from the
// slots_by_lot index (spec §9).
func (s *Service) GetLot(id string) (domain.ParkingLot, error) {
	lot, err := s.store.GetLot(id)
	if err != nil {
		return domain.ParkingLot{}, errors.NotFound("lot", id)
	}

	slots, err := s.store.ListSlotsByLot(id)
	if err != nil {
		return domain.ParkingLot{}, errors.ServerError("failed to load lot slots", err)
	}

	lot.Floors = assembleFloors(slots)
	lot.TotalSlots = len(slots)
	lot.AvailableSlots = countAvailable(slots)
	return lot, nil
}

// ListLots returns every lot with floors/slots reconstructed.
func (s *Service) ListLots() ([]domain.ParkingLot, error) {
	lots, err := s.store.ListLots()
	if err != nil {
		return nil, errors.ServerError("failed to list lots", err)
	}

	out := make([]domain.ParkingLot, 0, len(lots))
	for _, lot := range lots {
		full, err := s.GetLot(lot.ID)
		if err != nil {
			continue
		}
		out = append(out, full)
	}
	return out, nil
}

// UpdateLotStatus changes a lot's operational status (e.g. open/closed for
// maintenance).
func (s *Service) UpdateLotStatus(id string, status domain.LotStatus) (domain.ParkingLot, error) {
	lot, err := s.store.GetLot(id)
	if err != nil {
		return domain.ParkingLot{}, errors.NotFound("lot", id)
	}
	lot.Status = status
	lot.UpdatedAt = s.now()
	if err := s.store.SaveLot(lot); err != nil {
		return domain.ParkingLot{}, errors.ServerError("failed to persist lot status", err)
	}
	return s.GetLot(id)
}

// CreateSlot adds a slot to lotID's floor floorID.
func (s *Service) CreateSlot(lotID, floorID string, slot domain.ParkingSlot) (domain.ParkingSlot, error) {
	if _, err := s.store.GetLot(lotID); err != nil {
		return domain.ParkingSlot{}, errors.NotFound("lot", lotID)
	}
	slot.ID = uuid.NewString()
	slot.LotID = lotID
	slot.FloorID = floorID
	if slot.Status == "" {
		slot.Status = domain.SlotAvailable
	}
	if err := s.store.SaveSlot(slot); err != nil {
		return domain.ParkingSlot{}, errors.ServerError("failed to persist slot", err)
	}
	return slot, nil
}

// GetSlot returns the slot addressed by id, with its CurrentBooking's
// IsOwnBooking flag resolved against viewerID.
func (s *Service) GetSlot(id, viewerID string) (domain.ParkingSlot, error) {
	slot, err := s.store.GetSlot(id)
	if err != nil {
		return domain.ParkingSlot{}, errors.NotFound("slot", id)
	}
	resolveOwnership(&slot, viewerID)
	return slot, nil
}

// ListSlots returns every slot in lotID, with CurrentBooking.IsOwnBooking
// resolved against viewerID.
func (s *Service) ListSlots(lotID, viewerID string) ([]domain.ParkingSlot, error) {
	slots, err := s.store.ListSlotsByLot(lotID)
	if err != nil {
		return nil, errors.ServerError("failed to list slots", err)
	}
	for i := range slots {
		resolveOwnership(&slots[i], viewerID)
	}
	return slots, nil
}

// DeleteSlot removes a slot from a lot (admin operation).
func (s *Service) DeleteSlot(lotID, id string) error {
	if err := s.store.DeleteSlot(lotID, id); err != nil {
		return errors.ServerError("failed to delete slot", err)
	}
	return nil
}

func resolveOwnership(slot *domain.ParkingSlot, viewerID string) {
	if slot.CurrentBooking != nil {
		slot.CurrentBooking.IsOwnBooking = viewerID != "" && slot.CurrentBooking.UserID == viewerID
	}
}

// assembleFloors groups slots by FloorID into ParkingFloor views sorted by
// floor id, numbering them 1..n in that order; Name is left empty
// (spec §9: floors are never persisted, only assembled on read).
func assembleFloors(slots []domain.ParkingSlot) []domain.ParkingFloor {
	if len(slots) == 0 {
		return nil
	}

	order := make([]string, 0)
	byFloor := make(map[string][]domain.ParkingSlot)
	for _, slot := range slots {
		floorID := slot.FloorID
		if floorID == "" {
			floorID = "unassigned"
		}
		if _, seen := byFloor[floorID]; !seen {
			order = append(order, floorID)
		}
		byFloor[floorID] = append(byFloor[floorID], slot)
	}
	sort.Strings(order)

	floors := make([]domain.ParkingFloor, 0, len(order))
	for i, floorID := range order {
		floorSlots := byFloor[floorID]
		floors = append(floors, domain.ParkingFloor{
			ID:             floorID,
			FloorNumber:    i + 1,
			TotalSlots:     len(floorSlots),
			AvailableSlots: countAvailable(floorSlots),
			Slots:          floorSlots,
		})
	}
	return floors
}

func countAvailable(slots []domain.ParkingSlot) int {
	n := 0
	for _, s := range slots {
		if s.Status == domain.SlotAvailable {
			n++
		}
	}
	return n
}

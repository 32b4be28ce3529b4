package storage

import (
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

func slotIndexKey(lotID, slotID string) string {
	return lotID + ":" + slotID
}

// SaveSlot upserts a slot row and keeps its slots_by_lot index entry (keyed
// "<lot-id>:<slot-id>", spec §4.B) in sync.
func (s *Store) SaveSlot(slot domain.ParkingSlot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := s.put(tx, bucketSlots, slot.ID, slot); err != nil {
			return err
		}
		return s.put(tx, bucketSlotsByLot, slotIndexKey(slot.LotID, slot.ID), slot.ID)
	})
}

// GetSlot returns the slot addressed by id.
func (s *Store) GetSlot(id string) (domain.ParkingSlot, error) {
	var slot domain.ParkingSlot
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketSlots, id, &slot)
	})
	return slot, err
}

// ListSlotsByLot prefix-scans slots_by_lot for lotID and resolves each
// entry against the primary slots table.
func (s *Store) ListSlotsByLot(lotID string) ([]domain.ParkingSlot, error) {
	prefix := []byte(lotID + ":")
	var out []domain.ParkingSlot
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSlotsByLot).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var slotID string
			if err := s.codec.Decode(append([]byte(nil), v...), &slotID); err != nil {
				return err
			}
			var slot domain.ParkingSlot
			if err := s.get(tx, bucketSlots, slotID, &slot); err != nil {
				return err
			}
			out = append(out, slot)
		}
		return nil
	})
	return out, err
}

// DeleteSlot removes a slot row and its lot index entry.
func (s *Store) DeleteSlot(lotID, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketSlots).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketSlotsByLot).Delete([]byte(slotIndexKey(lotID, id)))
	})
}

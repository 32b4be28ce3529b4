package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// SaveLot upserts a parking lot row. Per spec §9's id-index model, the
// lot's Floors/Slots lists are never persisted here — floor/slot views are
// reconstructed on read from the slots_by_lot index.
func (s *Store) SaveLot(lot domain.ParkingLot) error {
	lot.Floors = nil
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketLots, lot.ID, lot)
	})
}

// GetLot returns the lot addressed by id (without floors/slots populated).
func (s *Store) GetLot(id string) (domain.ParkingLot, error) {
	var lot domain.ParkingLot
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketLots, id, &lot)
	})
	return lot, err
}

// ListLots scans the lots table.
func (s *Store) ListLots() ([]domain.ParkingLot, error) {
	var out []domain.ParkingLot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLots).ForEach(func(k, v []byte) error {
			var lot domain.ParkingLot
			if err := s.codec.Decode(append([]byte(nil), v...), &lot); err != nil {
				return err
			}
			out = append(out, lot)
			return nil
		})
	})
	return out, err
}

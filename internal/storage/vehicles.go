package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// SaveVehicle upserts a vehicle row keyed by id.
func (s *Store) SaveVehicle(vehicle domain.Vehicle) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketVehicles, vehicle.ID, vehicle)
	})
}

// GetVehicle returns the vehicle addressed by id.
func (s *Store) GetVehicle(id string) (domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketVehicles, id, &vehicle)
	})
	return vehicle, err
}

// ListVehiclesByUser scans the vehicles table and filters by owner.
func (s *Store) ListVehiclesByUser(userID string) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVehicles).ForEach(func(k, v []byte) error {
			var vehicle domain.Vehicle
			if err := s.codec.Decode(append([]byte(nil), v...), &vehicle); err != nil {
				return err
			}
			if vehicle.UserID == userID {
				out = append(out, vehicle)
			}
			return nil
		})
	})
	return out, err
}

// DeleteVehicle removes a vehicle row by id.
func (s *Store) DeleteVehicle(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketVehicles).Delete([]byte(id))
	})
}

// DeleteVehiclesByUser removes every vehicle owned by userID (used by
// AnonymizeUser).
func (s *Store) DeleteVehiclesByUser(tx *bolt.Tx, userID string) error {
	b := tx.Bucket(bucketVehicles)
	var toDelete [][]byte
	err := b.ForEach(func(k, v []byte) error {
		var vehicle domain.Vehicle
		if err := s.codec.Decode(append([]byte(nil), v...), &vehicle); err != nil {
			return err
		}
		if vehicle.UserID == userID {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range toDelete {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

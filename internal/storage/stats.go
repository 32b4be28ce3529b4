package storage

import bolt "go.etcd.io/bbolt"

// Stats reports per-table row counts, gathered in a single read transaction
// (spec §4.B). Grounded on the original Rust implementation's DbStats.
type Stats struct {
	Users       int `json:"users"`
	Bookings    int `json:"bookings"`
	ParkingLots int `json:"parking_lots"`
	Vehicles    int `json:"vehicles"`
	Sessions    int `json:"sessions"`
}

// Statistics computes table counts in one read transaction.
func (s *Store) Statistics() (Stats, error) {
	var stats Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		stats.Users = tx.Bucket(bucketUsers).Stats().KeyN
		stats.Bookings = tx.Bucket(bucketBookings).Stats().KeyN
		stats.ParkingLots = tx.Bucket(bucketLots).Stats().KeyN
		stats.Vehicles = tx.Bucket(bucketVehicles).Stats().KeyN
		stats.Sessions = tx.Bucket(bucketSessions).Stats().KeyN
		return nil
	})
	return stats, err
}

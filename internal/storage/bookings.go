package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// SaveBooking upserts a booking row keyed by id.
func (s *Store) SaveBooking(booking domain.Booking) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketBookings, booking.ID, booking)
	})
}

// GetBooking returns the booking addressed by id.
func (s *Store) GetBooking(id string) (domain.Booking, error) {
	var booking domain.Booking
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketBookings, id, &booking)
	})
	return booking, err
}

// ListBookingsByUser scans the bookings table and filters by owner (spec
// §4.F list-bookings).
func (s *Store) ListBookingsByUser(userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookings).ForEach(func(k, v []byte) error {
			var booking domain.Booking
			if err := s.codec.Decode(append([]byte(nil), v...), &booking); err != nil {
				return err
			}
			if booking.UserID == userID {
				out = append(out, booking)
			}
			return nil
		})
	})
	return out, err
}

// ListAllBookings scans the entire bookings table (admin variant).
func (s *Store) ListAllBookings() ([]domain.Booking, error) {
	var out []domain.Booking
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookings).ForEach(func(k, v []byte) error {
			var booking domain.Booking
			if err := s.codec.Decode(append([]byte(nil), v...), &booking); err != nil {
				return err
			}
			out = append(out, booking)
			return nil
		})
	})
	return out, err
}

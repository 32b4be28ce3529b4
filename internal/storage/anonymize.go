package storage

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// AnonymizeUser implements the GDPR Art. 17 erasure operation (spec §4.B,
// §4.G, §8 scenario S5) within a single write transaction: the user's
// email/username are overwritten with synthetic sentinels tied to the id,
// the display name is set to a fixed placeholder, phone and picture are
// cleared, the password hash is wiped, the account is
// marked inactive, the user's vehicles are deleted, and any retained
// bookings have their embedded vehicle PII blanked while the booking
// records themselves are kept for accounting retention.
func (s *Store) AnonymizeUser(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var user domain.User
		if err := s.get(tx, bucketUsers, id, &user); err != nil {
			return err
		}

		oldUsername, oldEmail := user.Username, user.Email
		sentinel := "anon-" + id
		user.Username = sentinel
		user.Email = sentinel + "@anonymized.invalid"
		user.Name = "Anonymized User"
		user.Phone = ""
		user.Picture = ""
		user.PasswordHash = ""
		user.IsActive = false
		user.UpdatedAt = time.Now().UTC()

		if oldUsername != user.Username {
			if err := tx.Bucket(bucketUsersByUsername).Delete([]byte(oldUsername)); err != nil {
				return err
			}
		}
		if oldEmail != user.Email {
			if err := tx.Bucket(bucketUsersByEmail).Delete([]byte(oldEmail)); err != nil {
				return err
			}
		}

		if err := s.put(tx, bucketUsers, user.ID, user); err != nil {
			return err
		}
		if err := s.put(tx, bucketUsersByUsername, user.Username, user.ID); err != nil {
			return err
		}
		if err := s.put(tx, bucketUsersByEmail, user.Email, user.ID); err != nil {
			return err
		}

		if err := s.DeleteVehiclesByUser(tx, id); err != nil {
			return err
		}

		return s.blankBookingVehiclePII(tx, id)
	})
}

// blankBookingVehiclePII nulls the embedded vehicle snapshot's PII fields on
// every booking owned by userID, keeping the booking record itself intact.
func (s *Store) blankBookingVehiclePII(tx *bolt.Tx, userID string) error {
	b := tx.Bucket(bucketBookings)
	var toUpdate []domain.Booking
	err := b.ForEach(func(k, v []byte) error {
		var booking domain.Booking
		if err := s.codec.Decode(append([]byte(nil), v...), &booking); err != nil {
			return err
		}
		if booking.UserID == userID {
			toUpdate = append(toUpdate, booking)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, booking := range toUpdate {
		booking.Vehicle = domain.Vehicle{ID: booking.Vehicle.ID}
		if err := s.put(tx, bucketBookings, booking.ID, booking); err != nil {
			return err
		}
	}
	return nil
}

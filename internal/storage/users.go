package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// SaveUser is transactional (spec §4.B): it maintains the primary user row
// plus the username->id and email->id indices. If a prior row exists under
// the same id with a different username/email, the stale index entries are
// explicitly deleted before the new ones are written.
func (s *Store) SaveUser(user domain.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var existing domain.User
		err := s.get(tx, bucketUsers, user.ID, &existing)
		switch err {
		case nil:
			if existing.Username != user.Username {
				if err := tx.Bucket(bucketUsersByUsername).Delete([]byte(existing.Username)); err != nil {
					return err
				}
			}
			if existing.Email != user.Email {
				if err := tx.Bucket(bucketUsersByEmail).Delete([]byte(existing.Email)); err != nil {
					return err
				}
			}
		case ErrNotFound:
			// first save, nothing to clean up
		default:
			return err
		}

		if err := s.put(tx, bucketUsers, user.ID, user); err != nil {
			return err
		}
		if err := s.put(tx, bucketUsersByUsername, user.Username, user.ID); err != nil {
			return err
		}
		return s.put(tx, bucketUsersByEmail, user.Email, user.ID)
	})
}

// GetUser returns the user row addressed by id.
func (s *Store) GetUser(id string) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketUsers, id, &user)
	})
	return user, err
}

// GetUserByUsername resolves the username->id index, then the primary row.
func (s *Store) GetUserByUsername(username string) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		var id string
		if err := s.get(tx, bucketUsersByUsername, username, &id); err != nil {
			return err
		}
		return s.get(tx, bucketUsers, id, &user)
	})
	return user, err
}

// GetUserByEmail resolves the email->id index, then the primary row.
func (s *Store) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		var id string
		if err := s.get(tx, bucketUsersByEmail, email, &id); err != nil {
			return err
		}
		return s.get(tx, bucketUsers, id, &user)
	})
	return user, err
}

// ListUsers scans the primary users table.
func (s *Store) ListUsers() ([]domain.User, error) {
	var out []domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, v []byte) error {
			var user domain.User
			if err := s.codec.Decode(append([]byte(nil), v...), &user); err != nil {
				return err
			}
			out = append(out, user)
			return nil
		})
	})
	return out, err
}

// DeleteUser removes the primary row and both indices. Used by tests to
// verify index consistency (spec §8 invariant 4); not exposed as an API
// operation (GDPR erasure anonymizes in place, see AnonymizeUser).
func (s *Store) DeleteUser(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var existing domain.User
		if err := s.get(tx, bucketUsers, id, &existing); err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsersByUsername).Delete([]byte(existing.Username)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketUsersByEmail).Delete([]byte(existing.Email)); err != nil {
			return err
		}
		return tx.Bucket(bucketUsers).Delete([]byte(id))
	})
}

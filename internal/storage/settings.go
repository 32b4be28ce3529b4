package storage

import (
	bolt "go.etcd.io/bbolt"
)

// GetSetting returns the string value for key, or ErrNotFound if absent.
// An empty string value is a valid, present "tombstone" (spec §3) — callers
// distinguish tombstoned from absent by checking the error, not the value.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketSettings, key, &value)
	})
	return value, err
}

// SetSetting writes key -> value, creating or overwriting the row.
func (s *Store) SetSetting(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, bucketSettings, key, value)
	})
}

// TombstoneSetting overwrites key with an empty string, marking it consumed
// (used for one-shot password-reset tokens, spec §4.G).
func (s *Store) TombstoneSetting(key string) error {
	return s.SetSetting(key, "")
}

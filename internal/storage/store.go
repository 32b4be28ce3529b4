// Package storage is the embedded key-value storage engine (spec §4.B):
// named tables over a single bbolt file, with secondary indices, atomic
// multi-table transactions, and optional at-rest encryption via
// internal/cryptoutil.
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/cryptoutil"
)

// Table names (spec §4.B).
var (
	bucketUsers             = []byte("users")
	bucketUsersByUsername   = []byte("users_by_username")
	bucketUsersByEmail      = []byte("users_by_email")
	bucketSessions          = []byte("sessions")
	bucketSessionsByRefresh = []byte("sessions_by_refresh_token")
	bucketBookings          = []byte("bookings")
	bucketLots              = []byte("lots")
	bucketSlots             = []byte("slots")
	bucketSlotsByLot        = []byte("slots_by_lot")
	bucketVehicles          = []byte("vehicles")
	bucketSettings          = []byte("settings")

	allBuckets = [][]byte{
		bucketUsers, bucketUsersByUsername, bucketUsersByEmail,
		bucketSessions, bucketSessionsByRefresh,
		bucketBookings, bucketLots, bucketSlots, bucketSlotsByLot,
		bucketVehicles, bucketSettings,
	}
)

// Settings keys.
const (
	SettingSetupCompleted = "setup_completed"
	SettingDBVersion      = "db_version"
	SettingEncryptionSalt = "encryption_salt"
	currentDBVersion      = "1"
)

// Store wraps a bbolt database with ParkHub's table layout and codec.
type Store struct {
	db    *bolt.DB
	codec *cryptoutil.Codec
}

// Open opens (or creates) the embedded store at <dataDir>/parkhub.db. When
// encryptionEnabled is true, passphrase must be non-empty (ErrKeyInit
// otherwise); the symmetric key is derived once here via PBKDF2 using a
// salt generated on first open and persisted as a setting thereafter.
func Open(dataDir string, encryptionEnabled bool, passphrase string) (*Store, error) {
	if encryptionEnabled && passphrase == "" {
		return nil, cryptoutil.ErrKeyInit
	}

	dbPath := filepath.Join(dataDir, "parkhub.db")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	isFreshOpen := false
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			b, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
			_ = b
		}
		settings := tx.Bucket(bucketSettings)
		if settings.Get([]byte(SettingDBVersion)) == nil {
			isFreshOpen = true
			if err := settings.Put([]byte(SettingDBVersion), []byte(currentDBVersion)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db}

	if !encryptionEnabled {
		store.codec, err = cryptoutil.NewCodec(nil)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	}

	salt, err := store.saltFor(isFreshOpen)
	if err != nil {
		db.Close()
		return nil, err
	}
	key := cryptoutil.DeriveKey(passphrase, salt)
	store.codec, err = cryptoutil.NewCodec(key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// saltFor returns the persisted encryption salt, generating and storing a
// fresh one on first open.
func (s *Store) saltFor(freshOpen bool) ([]byte, error) {
	if !freshOpen {
		existing, err := s.getSettingRaw(SettingEncryptionSalt)
		if err == nil && len(existing) > 0 {
			return existing, nil
		}
	}
	salt, err := cryptoutil.NewSalt()
	if err != nil {
		return nil, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(SettingEncryptionSalt), salt)
	}); err != nil {
		return nil, fmt.Errorf("persist encryption salt: %w", err)
	}
	return salt, nil
}

func (s *Store) getSettingRaw(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSettings).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// put encodes v via the codec and writes it under key in bucket, within tx.
func (s *Store) put(tx *bolt.Tx, bucket []byte, key string, v interface{}) error {
	blob, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return tx.Bucket(bucket).Put([]byte(key), blob)
}

// get decodes the value stored under key in bucket into v.
func (s *Store) get(tx *bolt.Tx, bucket []byte, key string, v interface{}) error {
	blob := tx.Bucket(bucket).Get([]byte(key))
	if blob == nil {
		return ErrNotFound
	}
	cp := append([]byte(nil), blob...)
	if err := s.codec.Decode(cp, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

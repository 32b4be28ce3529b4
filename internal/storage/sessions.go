package storage

import (
	bolt "go.etcd.io/bbolt"

	"github.com/parkhub/parkhub-server/internal/domain"
)

// SaveSession writes the session under its access token and a second row in
// sessions_by_refresh_token mapping the refresh token to the access token
// (spec §4.B).
func (s *Store) SaveSession(session domain.Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := s.put(tx, bucketSessions, session.AccessToken, session); err != nil {
			return err
		}
		return s.put(tx, bucketSessionsByRefresh, session.RefreshToken, session.AccessToken)
	})
}

// GetSession looks up a session by access token.
func (s *Store) GetSession(accessToken string) (domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.get(tx, bucketSessions, accessToken, &session)
	})
	return session, err
}

// GetSessionByRefreshToken returns the (access-token, session) pair for a
// refresh token.
func (s *Store) GetSessionByRefreshToken(refreshToken string) (string, domain.Session, error) {
	var accessToken string
	var session domain.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := s.get(tx, bucketSessionsByRefresh, refreshToken, &accessToken); err != nil {
			return err
		}
		return s.get(tx, bucketSessions, accessToken, &session)
	})
	return accessToken, session, err
}

// DeleteSession removes a session row by access token. Used on refresh
// rotation to retire the prior access token; per spec §4.C, failure here is
// logged by the caller but never fails the refresh call.
func (s *Store) DeleteSession(accessToken string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(accessToken))
	})
}

// DeleteSessionByRefreshToken removes only the refresh-token index row,
// e.g. once a refresh has been consumed.
func (s *Store) DeleteSessionByRefreshToken(refreshToken string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessionsByRefresh).Delete([]byte(refreshToken))
	})
}

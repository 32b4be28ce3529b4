// Package auth issues and verifies ParkHub sessions: Argon2id password
// hashing, opaque bearer tokens, and the bearer-auth middleware that
// resolves them against storage (spec §4.C).
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	internalhttputil "github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/domain"
	"github.com/parkhub/parkhub-server/internal/storage"
)

const (
	// AccessTokenTTL is the lifetime of a session issued by login.
	AccessTokenTTL = 24 * time.Hour
	// RefreshedAccessTokenTTL is the lifetime of a session re-issued by
	// refresh (spec §4.C: refresh-issued sessions live 7 days).
	RefreshedAccessTokenTTL = 168 * time.Hour
)

// Service issues, refreshes, and verifies sessions against the store.
type Service struct {
	store  *storage.Store
	logger *logging.Logger
	now    func() time.Time
}

// New builds a session Service over store.
func New(store *storage.Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// generateToken returns a 128-bit opaque identifier, hex-encoded.
func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Login verifies credentials and issues a fresh session with a 24-hour
// access token lifetime.
func (s *Service) Login(ctx context.Context, username, password string) (domain.AuthTokens, domain.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		s.logger.LogAuthEvent(ctx, "login", username, false, err)
		return domain.AuthTokens{}, domain.User{}, errors.InvalidCredentials()
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.logger.LogAuthEvent(ctx, "login", username, false, nil)
		return domain.AuthTokens{}, domain.User{}, errors.InvalidCredentials()
	}

	if !user.IsActive {
		s.logger.LogAuthEvent(ctx, "login", username, false, nil)
		return domain.AuthTokens{}, domain.User{}, errors.AccountDisabled()
	}

	tokens, err := s.issue(user, AccessTokenTTL)
	if err != nil {
		return domain.AuthTokens{}, domain.User{}, err
	}

	loginTime := s.now()
	user.LastLogin = &loginTime
	if err := s.store.SaveUser(user); err != nil {
		s.logger.Error(ctx, "failed to record last login", err, nil)
	}

	s.logger.LogAuthEvent(ctx, "login", username, true, nil)
	return tokens, user, nil
}

// Refresh rotates a refresh token: it issues a new session with a 7-day
// access token lifetime and deletes the old access-token row once the new
// one is persisted. Deletion failure is logged, never surfaced (spec §4.C).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	oldAccessToken, session, err := s.store.GetSessionByRefreshToken(refreshToken)
	if err != nil {
		return domain.AuthTokens{}, errors.InvalidRefreshToken()
	}

	user, err := s.store.GetUser(session.UserID)
	if err != nil {
		return domain.AuthTokens{}, errors.InvalidRefreshToken()
	}
	if !user.IsActive {
		return domain.AuthTokens{}, errors.AccountDisabled()
	}

	tokens, err := s.issue(user, RefreshedAccessTokenTTL)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	if err := s.store.DeleteSession(oldAccessToken); err != nil {
		s.logger.Error(ctx, "failed to delete superseded session on refresh", err, nil)
	}
	if err := s.store.DeleteSessionByRefreshToken(refreshToken); err != nil {
		s.logger.Error(ctx, "failed to delete consumed refresh token index", err, nil)
	}

	return tokens, nil
}

// issue writes a new session row and returns its public token pair.
func (s *Service) issue(user domain.User, ttl time.Duration) (domain.AuthTokens, error) {
	accessToken, err := generateToken()
	if err != nil {
		return domain.AuthTokens{}, errors.ServerError("failed to generate access token", err)
	}
	refreshToken, err := generateToken()
	if err != nil {
		return domain.AuthTokens{}, errors.ServerError("failed to generate refresh token", err)
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	session := domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		UsernameSnap: user.Username,
		RoleSnap:     user.Role,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}
	if err := s.store.SaveSession(session); err != nil {
		return domain.AuthTokens{}, errors.ServerError("failed to persist session", err)
	}

	return domain.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// Logout deletes the session addressed by accessToken. A missing session is
// treated as already logged out.
func (s *Service) Logout(accessToken string) error {
	return s.store.DeleteSession(accessToken)
}

// Authenticate resolves a bearer token to its session, rejecting missing or
// expired sessions. It does not auto-refresh (spec §4.C).
func (s *Service) Authenticate(token string) (domain.Session, error) {
	session, err := s.store.GetSession(token)
	if err != nil {
		return domain.Session{}, errors.Unauthorized("session not found")
	}
	if session.Expired(s.now()) {
		return domain.Session{}, errors.SessionExpired()
	}
	return session, nil
}

// Middleware extracts the bearer token from the Authorization header, looks
// up the session, and attaches the resolved user id and role to the request
// context. Requests with no or invalid tokens pass through unauthenticated
// rather than being rejected here — individual handlers require auth via
// infrastructure/httputil.RequireUserID.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := s.Authenticate(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logging.WithUserID(r.Context(), session.UserID)
		ctx = logging.WithRole(ctx, string(session.RoleSnap))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// RequireSession is a stricter variant for routes that must 401 immediately
// on a missing or invalid bearer token, rather than deferring to
// RequireUserID downstream (e.g. the logout endpoint, which needs the raw
// token itself).
func (s *Service) RequireSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	token := bearerToken(r)
	if token == "" {
		internalhttputil.Unauthorized(w, "missing bearer token")
		return domain.Session{}, false
	}

	session, err := s.Authenticate(token)
	if err != nil {
		se := errors.GetServiceError(err)
		if se != nil {
			internalhttputil.WriteErrorResponse(w, r, se.HTTPStatus, string(se.Code), se.Message, se.Details)
		} else {
			internalhttputil.Unauthorized(w, "invalid session")
		}
		return domain.Session{}, false
	}

	return session, true
}

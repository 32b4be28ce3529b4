// Package users implements registration, admin user management, password
// reset, and GDPR erasure (spec §4.G).
package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/auth"
	"github.com/parkhub/parkhub-server/internal/domain"
	"github.com/parkhub/parkhub-server/internal/storage"
)

const (
	settingSelfRegistration = "allow_self_registration"
	resetTokenPrefix        = "pwreset:"
	resetTokenTTL           = time.Hour
	minPasswordLength       = 8
)

// Service implements registration, admin operations, and password-reset
// flows over the store.
type Service struct {
	store   *storage.Store
	auth    *auth.Service
	logger  *logging.Logger
	now     func() time.Time
}

// New builds a Service. authSvc is used to issue the inline session on
// registration.
func New(store *storage.Store, authSvc *auth.Service, logger *logging.Logger) *Service {
	return &Service{store: store, auth: authSvc, logger: logger, now: time.Now}
}

// SelfRegistrationAllowed reports the allow_self_registration config flag,
// defaulting to enabled when unset.
func (s *Service) SelfRegistrationAllowed() bool {
	value, err := s.store.GetSetting(settingSelfRegistration)
	if err != nil {
		return true
	}
	return value != "false"
}

// SetSelfRegistrationAllowed updates the allow_self_registration flag.
func (s *Service) SetSelfRegistrationAllowed(allowed bool) error {
	value := "true"
	if !allowed {
		value = "false"
	}
	return s.store.SetSetting(settingSelfRegistration, value)
}

// RegisterRequest is the wire body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new account gated by the allow_self_registration
// flag, synthesizes a collision-free username from the email's local
// part, and issues a session inline so the client is authenticated on the
// same round-trip (spec §4.G).
func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.AuthTokens, domain.User, error) {
	if !s.SelfRegistrationAllowed() {
		return domain.AuthTokens{}, domain.User{}, errors.RegistrationDisabled()
	}
	if len(req.Password) < minPasswordLength {
		return domain.AuthTokens{}, domain.User{}, errors.InvalidPassword("must be at least 8 characters")
	}
	if _, err := s.store.GetUserByEmail(req.Email); err == nil {
		return domain.AuthTokens{}, domain.User{}, errors.EmailExists(req.Email)
	}

	username, err := s.synthesizeUsername(req.Email)
	if err != nil {
		return domain.AuthTokens{}, domain.User{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.AuthTokens{}, domain.User{}, errors.ServerError("failed to hash password", err)
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveUser(user); err != nil {
		return domain.AuthTokens{}, domain.User{}, errors.ServerError("failed to persist new user", err)
	}

	tokens, _, err := s.auth.Login(ctx, username, req.Password)
	if err != nil {
		return domain.AuthTokens{}, domain.User{}, err
	}

	s.logger.LogAuthEvent(ctx, "register", username, true, nil)
	return tokens, user.Redacted(), nil
}

// synthesizeUsername derives a username from the local part of email,
// appending a numeric suffix until an unused name is found.
func (s *Service) synthesizeUsername(email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	base := strings.ToLower(local)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 0; ; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		if _, err := s.store.GetUserByUsername(candidate); err != nil {
			return candidate, nil
		}
		if i > 10000 {
			return "", errors.ServerError("failed to synthesize a unique username", nil)
		}
	}
}

// RequireAdmin verifies the caller's role is Admin or SuperAdmin.
func (s *Service) RequireAdmin(callerRole string) error {
	role := domain.UserRole(callerRole)
	if !role.IsAdmin() {
		return errors.Forbidden("admin role required")
	}
	return nil
}

// ListUsers returns every account (admin only; caller role checked by the
// handler via httputil.RequireAdminRole).
func (s *Service) ListUsers() ([]domain.User, error) {
	return s.store.ListUsers()
}

// ChangeRole sets targetID's role; roleValue accepts "admin"|"superadmin",
// anything else maps to RoleUser (spec §4.G).
func (s *Service) ChangeRole(targetID, roleValue string) (domain.User, error) {
	user, err := s.store.GetUser(targetID)
	if err != nil {
		return domain.User{}, errors.NotFound("user", targetID)
	}
	user.Role = domain.ParseAdminRole(roleValue)
	user.UpdatedAt = s.now()
	if err := s.store.SaveUser(user); err != nil {
		return domain.User{}, errors.ServerError("failed to persist role change", err)
	}
	return user.Redacted(), nil
}

// ChangeStatus sets targetID's active flag; statusValue "active" activates,
// anything else disables (spec §4.G).
func (s *Service) ChangeStatus(targetID, statusValue string) (domain.User, error) {
	user, err := s.store.GetUser(targetID)
	if err != nil {
		return domain.User{}, errors.NotFound("user", targetID)
	}
	user.IsActive = statusValue == "active"
	user.UpdatedAt = s.now()
	if err := s.store.SaveUser(user); err != nil {
		return domain.User{}, errors.ServerError("failed to persist status change", err)
	}
	return user.Redacted(), nil
}

// DeleteUser anonymizes targetID (GDPR erasure); an admin may not delete
// their own account this way (spec §4.G).
func (s *Service) DeleteUser(callerID, targetID string) error {
	if callerID == targetID {
		return errors.Forbidden("admins cannot delete their own account")
	}
	if err := s.store.AnonymizeUser(targetID); err != nil {
		return errors.ServerError("failed to anonymize user", err)
	}
	return nil
}

// RequestPasswordReset always reports success regardless of whether email
// resolves to an account (anti-enumeration, spec §4.G). When it does, a
// 128-bit token is stored with a 1-hour expiry; the caller is responsible
// for dispatching it via the mail subsystem.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (token string, found bool) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return "", false
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		s.logger.Error(ctx, "failed to generate password reset token", err, nil)
		return "", false
	}
	token = hex.EncodeToString(raw)

	value := fmt.Sprintf("%s|%d", user.ID, s.now().Add(resetTokenTTL).Unix())
	if err := s.store.SetSetting(resetTokenPrefix+token, value); err != nil {
		s.logger.Error(ctx, "failed to persist password reset token", err, nil)
		return "", false
	}

	return token, true
}

// ConfirmPasswordReset looks up the reset token, rejecting missing,
// tombstoned, or expired tokens, then sets the new password and tombstones
// the token (spec §4.G).
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return errors.InvalidPassword("must be at least 8 characters")
	}

	key := resetTokenPrefix + token
	value, err := s.store.GetSetting(key)
	if err != nil || value == "" {
		return errors.InvalidResetToken()
	}

	userID, expiresUnix, ok := parseResetTokenValue(value)
	if !ok {
		return errors.InvalidResetToken()
	}
	if s.now().Unix() > expiresUnix {
		return errors.ResetTokenExpired()
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return errors.InvalidResetToken()
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return errors.ServerError("failed to hash new password", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	if err := s.store.SaveUser(user); err != nil {
		return errors.ServerError("failed to persist password change", err)
	}

	if err := s.store.TombstoneSetting(key); err != nil {
		s.logger.Error(ctx, "failed to tombstone password reset token", err, nil)
	}

	return nil
}

func parseResetTokenValue(value string) (userID string, expiresUnix int64, ok bool) {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	var exp int64
	if _, err := fmt.Sscanf(parts[1], "%d", &exp); err != nil {
		return "", 0, false
	}
	return parts[0], exp, true
}

package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/auth"
	"github.com/parkhub/parkhub-server/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(t.TempDir(), false, "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	logger := logging.New("test", "info", "json")
	authSvc := auth.New(store, logger)
	return New(store, authSvc, logger), store
}

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestService(t)

	tokens, user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)
}

func TestRegister_DisabledByConfig(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.SetSelfRegistrationAllowed(false))

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "alice@example.com", Password: "correct-password",
	})
	require.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "another-password"})
	require.Error(t, err)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "short"})
	require.Error(t, err)
}

func TestSynthesizeUsername_ResolvesCollision(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "bob@example.com", Password: "correct-password"})
	require.NoError(t, err)

	_, user2, err := svc.Register(context.Background(), RegisterRequest{Email: "bob@other.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.Equal(t, "bob1", user2.Username)
}

func TestChangeRole_MapsUnrecognizedToUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, user, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	updated, err := svc.ChangeRole(user.ID, "superadmin")
	require.NoError(t, err)
	assert.Equal(t, "superadmin", string(updated.Role))

	updated, err = svc.ChangeRole(user.ID, "not-a-real-role")
	require.NoError(t, err)
	assert.Equal(t, "user", string(updated.Role))
}

func TestDeleteUser_ForbidsSelfDeletion(t *testing.T) {
	svc, _ := newTestService(t)
	_, user, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	err = svc.DeleteUser(user.ID, user.ID)
	require.Error(t, err)
}

func TestPasswordReset_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "old-password"})
	require.NoError(t, err)

	token, found := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.True(t, found)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token, "new-password-123"))

	// token is single-use
	err = svc.ConfirmPasswordReset(context.Background(), token, "another-password")
	require.Error(t, err)
}

func TestPasswordReset_UnknownEmailStillReportsSuccessButNoToken(t *testing.T) {
	svc, _ := newTestService(t)
	token, found := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.False(t, found)
	assert.Empty(t, token)
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	svc, store := newTestService(t)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com", Password: "old-password"})
	require.NoError(t, err)

	token, found := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.True(t, found)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = svc.ConfirmPasswordReset(context.Background(), token, "new-password-123")
	require.Error(t, err)
	_ = store
}

func TestPasswordReset_InvalidTokenRejected(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.ConfirmPasswordReset(context.Background(), "not-a-real-token", "new-password-123")
	require.Error(t, err)
}

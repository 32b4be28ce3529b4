package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/auth"
	"github.com/parkhub/parkhub-server/internal/booking"
	"github.com/parkhub/parkhub-server/internal/discovery"
	"github.com/parkhub/parkhub-server/internal/lots"
	"github.com/parkhub/parkhub-server/internal/ratelimit"
	"github.com/parkhub/parkhub-server/internal/storage"
	"github.com/parkhub/parkhub-server/internal/users"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	store, err := storage.Open(t.TempDir(), false, "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := logging.New("test", "info", "json")
	authSvc := auth.New(store, logger)

	return &Deps{
		Store:      store,
		Auth:       authSvc,
		Booking:    booking.New(store, logger, nil),
		Users:      users.New(store, authSvc, logger),
		Lots:       lots.New(store),
		Limiters:   ratelimit.New(logger),
		Handshaker: discovery.NewHandshaker("ParkHub Test", "1.0.0", ""),
		Logger:     logger,
	}
}

// asUser attaches userID and role to r's context the way auth.Service's
// bearer-token middleware does once a session resolves.
func asUser(r *http.Request, userID, role string) *http.Request {
	ctx := logging.WithUserID(r.Context(), userID)
	ctx = logging.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}


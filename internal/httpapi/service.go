package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/infrastructure/metrics"
	"github.com/parkhub/parkhub-server/internal/auth"
	"github.com/parkhub/parkhub-server/internal/booking"
	"github.com/parkhub/parkhub-server/internal/discovery"
	"github.com/parkhub/parkhub-server/internal/lots"
	"github.com/parkhub/parkhub-server/internal/mail"
	"github.com/parkhub/parkhub-server/internal/ratelimit"
	"github.com/parkhub/parkhub-server/internal/storage"
	"github.com/parkhub/parkhub-server/internal/users"
)

// Deps bundles every collaborator a handler needs. One instance is built
// at startup and closed over by every route.
type Deps struct {
	Store      *storage.Store
	Auth       *auth.Service
	Booking    *booking.Coordinator
	Users      *users.Service
	Lots       *lots.Service
	Mail       *mail.Dispatcher
	Limiters   *ratelimit.Limiters
	Handshaker *discovery.Handshaker
	Logger     *logging.Logger
	Metrics    *metrics.Metrics

	// ExtraCORSOrigins augments the fixed localhost allow-list (spec §4.E)
	// with operator-configured origins from config.toml.
	ExtraCORSOrigins []string

	// ReadyCheck reports whether storage is reachable (spec §6's
	// /health/ready route). A nil check always reports ready.
	ReadyCheck func() error

	// Static serves the embedded front-end bundle, falling back to its
	// SPA index for any unmatched non-API GET path (spec §4.E). Nil
	// disables the fallback and leaves unmatched paths 404ing.
	Static http.Handler
}

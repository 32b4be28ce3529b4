// Package ratelimit wires the named token-bucket limiters that guard
// ParkHub's public endpoints: tight per-IP buckets on the authentication
// and password-recovery routes, and one shared bucket across everything
// else.
package ratelimit

import (
	"net/http"
	"time"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/infrastructure/middleware"
)

// Limiters holds the fixed set of named rate limiters the HTTP layer
// attaches to specific route groups.
type Limiters struct {
	Login          *middleware.RateLimiter
	Register       *middleware.RateLimiter
	ForgotPassword *middleware.RateLimiter
	General        *middleware.RateLimiter
}

// New builds the named limiters with the budgets fixed by the service's
// abuse-resistance requirements: login, register, and forgot-password are
// bucketed per client IP; general is a single shared bucket across every
// request regardless of caller.
func New(logger *logging.Logger) *Limiters {
	return &Limiters{
		Login:          middleware.NewRateLimiterWithWindow(5, 60*time.Second, 5, logger),
		Register:       middleware.NewRateLimiterWithWindow(3, 60*time.Second, 3, logger),
		ForgotPassword: middleware.NewRateLimiterWithWindow(3, 900*time.Second, 3, logger),
		General:        middleware.NewRateLimiterWithWindow(100, time.Second, 200, logger),
	}
}

// StartCleanup launches background trimming for every limiter whose
// per-key map can grow unbounded (login/register/forgot-password are
// keyed by client IP). General uses a single constant key and needs no
// cleanup.
func (l *Limiters) StartCleanup(interval time.Duration) (stop func()) {
	stopLogin := l.Login.StartCleanup(interval)
	stopRegister := l.Register.StartCleanup(interval)
	stopForgotPassword := l.ForgotPassword.StartCleanup(interval)
	return func() {
		stopLogin()
		stopRegister()
		stopForgotPassword()
	}
}

// generalKey is the constant bucket key for the global limiter: every
// request shares one allowance regardless of caller identity or address.
const generalKey = "global"

func generalKeyFunc(_ *http.Request) string {
	return generalKey
}

// GeneralHandler middleware-wraps next with the shared global limiter.
func (l *Limiters) GeneralHandler(next http.Handler) http.Handler {
	return l.General.HandlerWithKeyFunc(generalKeyFunc, next)
}

// RegisterHandler middleware-wraps next with the registration limiter.
func (l *Limiters) RegisterHandler(next http.Handler) http.Handler {
	return l.Register.Handler(next)
}

// ForgotPasswordHandler middleware-wraps next with the password-recovery
// request limiter.
func (l *Limiters) ForgotPasswordHandler(next http.Handler) http.Handler {
	return l.ForgotPassword.Handler(next)
}

// LoginHandler middleware-wraps next with the login attempt limiter.
func (l *Limiters) LoginHandler(next http.Handler) http.Handler {
	return l.Login.Handler(next)
}

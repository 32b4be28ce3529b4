package httpapi

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parkhub/parkhub-server/infrastructure/middleware"
)

const maxBodyBytes = 1 << 20 // 1 MiB (spec §4.E)

// NewRouter builds the full ParkHub route table with the spec §4.E
// pipeline applied: security headers, CORS, body-size cap, session
// middleware, then the two route groups (public, protected).
func NewRouter(deps *Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger).Handler)
	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware("parkhub", deps.Metrics))
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	r.Use(middleware.NewSecurityHeadersMiddleware(securityHeaders()).Handler)
	r.Use(corsMiddleware(deps))
	r.Use(middleware.NewBodyLimitMiddleware(maxBodyBytes).Handler)
	r.Use(deps.Auth.Middleware)

	mountPublicRoutes(r, deps)
	mountProtectedRoutes(r, deps)

	if deps.Static != nil {
		r.PathPrefix("/").Handler(deps.Static)
	}

	return r
}

func securityHeaders() map[string]string {
	headers := middleware.DefaultSecurityHeaders()
	headers["Content-Security-Policy"] = "default-src 'self'; script-src 'self'"
	headers["Strict-Transport-Security"] = "max-age=31536000; includeSubDomains; preload"
	headers["Permissions-Policy"] = "geolocation=(), camera=(), microphone=()"
	return headers
}

// corsMiddleware enforces spec §4.E's CORS predicate: http(s)://localhost:*
// and http://127.0.0.1:* at any port, plus requests carrying no Origin
// header (native/mobile/curl clients), pass; everything else is left
// without CORS headers so browsers enforce same-origin. This predicate
// needs dynamic-port matching the teacher's exact/suffix origin list
// (infrastructure/middleware.CORSMiddleware) cannot express, so it is
// implemented directly here rather than configured through that type.
func corsMiddleware(deps *Deps) func(http.Handler) http.Handler {
	allowedMethods := "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowedHeaders := "Authorization, Content-Type, Accept"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && isAllowedOrigin(origin, deps.ExtraCORSOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(origin string, extra []string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if (u.Scheme == "http" || u.Scheme == "https") && (host == "localhost" || host == "127.0.0.1") {
		return true
	}
	for _, e := range extra {
		if e == origin {
			return true
		}
	}
	return false
}

func mountPublicRoutes(r *mux.Router, deps *Deps) {
	r.HandleFunc("/health", handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/live", handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", handleReadiness(deps)).Methods(http.MethodGet)
	r.HandleFunc("/handshake", handleHandshake(deps)).Methods(http.MethodPost)

	r.Handle("/api/v1/auth/login", deps.Limiters.LoginHandler(http.HandlerFunc(handleLogin(deps)))).Methods(http.MethodPost)
	r.Handle("/api/v1/auth/register", deps.Limiters.RegisterHandler(http.HandlerFunc(handleRegister(deps)))).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/refresh", handleRefresh(deps)).Methods(http.MethodPost)
	r.Handle("/api/v1/auth/forgot-password", deps.Limiters.ForgotPasswordHandler(http.HandlerFunc(handleForgotPassword(deps)))).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/reset-password", handleResetPassword(deps)).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/legal/impressum", handleImpressumRead(deps)).Methods(http.MethodGet)
}

func mountProtectedRoutes(r *mux.Router, deps *Deps) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(deps.Limiters.GeneralHandler)

	api.HandleFunc("/users/me", handleGetMe(deps)).Methods(http.MethodGet)
	api.HandleFunc("/users/me/export", handleExportMe(deps)).Methods(http.MethodGet)
	api.HandleFunc("/users/me/delete", handleDeleteMe(deps)).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}", handleGetUserByID(deps)).Methods(http.MethodGet)

	api.HandleFunc("/vehicles", handleListVehicles(deps)).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", handleCreateVehicle(deps)).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}", handleDeleteVehicle(deps)).Methods(http.MethodDelete)

	api.HandleFunc("/lots", handleListLots(deps)).Methods(http.MethodGet)
	api.HandleFunc("/lots", handleCreateLot(deps)).Methods(http.MethodPost)
	api.HandleFunc("/lots/{id}", handleGetLot(deps)).Methods(http.MethodGet)
	api.HandleFunc("/lots/{id}/slots", handleListSlots(deps)).Methods(http.MethodGet)

	api.HandleFunc("/bookings", handleListBookings(deps)).Methods(http.MethodGet)
	api.HandleFunc("/bookings", handleCreateBooking(deps)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", handleGetBooking(deps)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", handleCancelBooking(deps)).Methods(http.MethodDelete)

	api.HandleFunc("/admin/users", handleAdminListUsers(deps)).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{id}/role", handleAdminChangeRole(deps)).Methods(http.MethodPatch)
	api.HandleFunc("/admin/users/{id}/status", handleAdminChangeStatus(deps)).Methods(http.MethodPatch)
	api.HandleFunc("/admin/users/{id}", handleAdminDeleteUser(deps)).Methods(http.MethodDelete)
	api.HandleFunc("/admin/bookings", handleAdminListBookings(deps)).Methods(http.MethodGet)
	api.HandleFunc("/admin/impressum", handleAdminGetImpressum(deps)).Methods(http.MethodGet)
	api.HandleFunc("/admin/impressum", handleAdminSetImpressum(deps)).Methods(http.MethodPut)
	api.HandleFunc("/admin/stats", handleAdminStats(deps)).Methods(http.MethodGet)
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/httputil"
	"github.com/parkhub/parkhub-server/internal/domain"
	"github.com/parkhub/parkhub-server/internal/users"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Tokens domain.AuthTokens `json:"tokens"`
	User   domain.User       `json:"user"`
}

func handleLogin(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		tokens, user, err := deps.Auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, authResponse{Tokens: tokens, User: user.Redacted()})
	}
}

func handleRegister(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.RegisterRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		tokens, user, err := deps.Users.Register(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusCreated, authResponse{Tokens: tokens, User: user.Redacted()})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func handleRefresh(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		tokens, err := deps.Auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeData(w, http.StatusOK, tokens)
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// handleForgotPassword always reports success regardless of whether the
// e-mail is registered, so the response can never be used to enumerate
// accounts (spec §4.G).
func handleForgotPassword(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
		if token, found := deps.Users.RequestPasswordReset(r.Context(), req.Email); found && deps.Mail != nil {
			deps.Mail.NotifyPasswordReset(r.Context(), req.Email, token)
		}
		writeOK(w)
	}
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func handleResetPassword(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		if err := deps.Users.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
			writeServiceError(w, r, deps.Logger, err)
			return
		}
		writeOK(w)
	}
}

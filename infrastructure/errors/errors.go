// Package errors provides the closed error taxonomy used across ParkHub's
// HTTP API (spec §7): a fixed set of ASCII error codes, each carrying a
// human message and a unique HTTP status, serialized into the uniform
// response envelope and never leaking internal error chains to callers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is one of the closed set of error kinds (spec §7).
type ErrorCode string

const (
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeSessionExpired      ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeAccountDisabled     ErrorCode = "ACCOUNT_DISABLED"
	ErrCodeRegistrationClosed  ErrorCode = "REGISTRATION_DISABLED"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeEmailExists         ErrorCode = "EMAIL_EXISTS"
	ErrCodeSlotUnavailable     ErrorCode = "SLOT_UNAVAILABLE"
	ErrCodeAlreadyCancelled    ErrorCode = "ALREADY_CANCELLED"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidBookingTime  ErrorCode = "INVALID_BOOKING_TIME"
	ErrCodeInvalidResetToken   ErrorCode = "INVALID_TOKEN"
	ErrCodeResetTokenExpired   ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidPassword     ErrorCode = "INVALID_PASSWORD"
	ErrCodeProtocolMismatch    ErrorCode = "PROTOCOL_MISMATCH"
	ErrCodePayloadTooLarge     ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeSlotUpdateFailed    ErrorCode = "SLOT_UPDATE_FAILED"
	ErrCodeServerError         ErrorCode = "SERVER_ERROR"
)

// ServiceError is a structured error with a closed code, a message safe to
// surface to clients, an HTTP status, and optional details. Err, when set,
// is logged but never serialized (propagation policy, spec §7).
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a named, client-safe detail. Never pass password
// hashes, tokens, or raw internal errors here — Details is serialized.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string, httpStatus int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(code ErrorCode, message string, httpStatus int, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// Authentication errors

func InvalidCredentials() *ServiceError {
	return New(ErrCodeInvalidCredentials, "Invalid username or password", http.StatusUnauthorized)
}

func Unauthorized(message string) *ServiceError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func SessionExpired() *ServiceError {
	return New(ErrCodeSessionExpired, "Session has expired", http.StatusUnauthorized)
}

func InvalidRefreshToken() *ServiceError {
	return New(ErrCodeInvalidRefreshToken, "Refresh token is unknown or already consumed", http.StatusUnauthorized)
}

// Authorization errors

func Forbidden(message string) *ServiceError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

func AccountDisabled() *ServiceError {
	return New(ErrCodeAccountDisabled, "Account is disabled", http.StatusForbidden)
}

func RegistrationDisabled() *ServiceError {
	return New(ErrCodeRegistrationClosed, "Self-registration is disabled", http.StatusForbidden)
}

// Resource errors

func NotFound(resource, id string) *ServiceError {
	return New(ErrCodeNotFound, "Resource not found", http.StatusNotFound).
		WithDetails("resource", resource).
		WithDetails("id", id)
}

func EmailExists(email string) *ServiceError {
	return New(ErrCodeEmailExists, "Email address is already registered", http.StatusConflict).
		WithDetails("email", email)
}

func SlotUnavailable(slotID string) *ServiceError {
	return New(ErrCodeSlotUnavailable, "Slot is not available", http.StatusConflict).
		WithDetails("slot_id", slotID)
}

func AlreadyCancelled(bookingID string) *ServiceError {
	return New(ErrCodeAlreadyCancelled, "Booking is already in a terminal state", http.StatusConflict).
		WithDetails("booking_id", bookingID)
}

// Validation errors

func InvalidInput(field, reason string) *ServiceError {
	return New(ErrCodeInvalidInput, "Invalid input", http.StatusBadRequest).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

func InvalidBookingTime() *ServiceError {
	return New(ErrCodeInvalidBookingTime, "Booking start time must be strictly in the future", http.StatusBadRequest)
}

// InvalidResetToken reports a missing or already-consumed password-reset
// token — distinct 400 INVALID_TOKEN, not to be confused with the 401
// TOKEN_EXPIRED session case (spec §7, redesign flags: this duplication of
// the code "TOKEN_EXPIRED" across two HTTP statuses is deliberate).
func InvalidResetToken() *ServiceError {
	return New(ErrCodeInvalidResetToken, "Password reset token is invalid or already used", http.StatusBadRequest)
}

func ResetTokenExpired() *ServiceError {
	return New(ErrCodeResetTokenExpired, "Password reset token has expired", http.StatusBadRequest)
}

func InvalidPassword(reason string) *ServiceError {
	return New(ErrCodeInvalidPassword, "Password does not meet policy", http.StatusBadRequest).
		WithDetails("reason", reason)
}

// ProtocolMismatch is returned inside a 200 success envelope as a business
// error, not a 4xx status — the observed handshake contract (spec §7).
func ProtocolMismatch(clientVersion, serverVersion string) *ServiceError {
	return New(ErrCodeProtocolMismatch, "Client and server protocol versions are incompatible", http.StatusOK).
		WithDetails("client_version", clientVersion).
		WithDetails("server_version", serverVersion)
}

func PayloadTooLarge(limitBytes int64) *ServiceError {
	return New(ErrCodePayloadTooLarge, "Request body exceeded the size limit", http.StatusRequestEntityTooLarge).
		WithDetails("limit_bytes", limitBytes)
}

func RateLimited(retryAfterSeconds int) *ServiceError {
	return New(ErrCodeRateLimited, "Too many requests", http.StatusTooManyRequests).
		WithDetails("retry_after_seconds", retryAfterSeconds)
}

// Service errors

// SlotUpdateFailed reports the booking-coordinator failure mode where a
// booking record was written but the paired slot-status flip did not
// commit (spec §7): surfaced as 500 since it indicates a write-path defect
// requiring operator attention, not a client mistake.
func SlotUpdateFailed(bookingID string, err error) *ServiceError {
	return Wrap(ErrCodeSlotUpdateFailed, "Booking recorded but slot status update failed", http.StatusInternalServerError, err).
		WithDetails("booking_id", bookingID)
}

// ServerError is the catch-all for storage/crypto/internal failures.
// err is kept in the Err field for logging only; it is never put into
// Details and never serialized.
func ServerError(message string, err error) *ServiceError {
	return Wrap(ErrCodeServerError, message, http.StatusInternalServerError, err)
}

// Helpers

func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

func GetHTTPStatus(err error) int {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
	Err        error             `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a client-visible detail field and returns e.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet business rules ----

func ErrInsufficientFunds(available, requested string, err error) *AppError {
	return Wrap("INSUFFICIENT_FUNDS",
		fmt.Sprintf("Insufficient funds. Available: %s, Requested: %s", available, requested),
		http.StatusBadRequest, err).
		WithDetail("availableBalance", available).
		WithDetail("requestedAmount", requested)
}

func ErrInvalidDebitAmount(amount string, err error) *AppError {
	return Wrap("INVALID_DEBIT_AMOUNT",
		fmt.Sprintf("Debit amount cannot be less than 0: %s", amount),
		http.StatusBadRequest, err).
		WithDetail("amount", amount)
}

func ErrInvalidAmount(amount string, err error) *AppError {
	return Wrap("INVALID_AMOUNT",
		fmt.Sprintf("Amount must be at least 0.01: %s", amount),
		http.StatusBadRequest, err).
		WithDetail("amount", amount)
}

func ErrWalletNotFound(walletID string, err error) *AppError {
	return Wrap("WALLET_NOT_FOUND",
		fmt.Sprintf("Wallet not found: %s", walletID),
		http.StatusNotFound, err).
		WithDetail("walletId", walletID)
}

func ErrConcurrentModification(err error) *AppError {
	return Wrap("CONCURRENT_MODIFICATION", "Wallet was modified by another transaction. Please retry.", http.StatusConflict, err)
}

// ---- Request validation ----

func ErrInvalidWalletID(raw string) *AppError {
	return New("INVALID_WALLET_ID", "Wallet id must be a valid UUID", http.StatusBadRequest).
		WithDetail("walletId", raw)
}

func ErrInvalidRequestBody() *AppError {
	return New("INVALID_REQUEST_BODY", "Invalid request body", http.StatusBadRequest)
}

func ErrRequestTooLarge() *AppError {
	return New("REQUEST_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrRequestTimeout() *AppError {
	return New("REQUEST_TIMEOUT", "Request timeout", http.StatusRequestTimeout)
}

// Validation returns a VALIDATION_ERROR for rejected request fields.
func Validation(message string) *AppError {
	return New("VALIDATION_ERROR", message, http.StatusBadRequest)
}

// ---- Rate Limiting ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_LIMIT_EXCEEDED", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as an INTERNAL_ERROR.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}

package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyExists         = errors.New("resource already exists")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("sender not authorized")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrInvalidDepositAddress = errors.New("invalid asset deposit address")
	ErrInvalidTxid           = errors.New("invalid asset txid")
	ErrTokenMismatch         = errors.New("token mismatch")
	ErrInvalidStatus         = errors.New("request is not pending")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrRecordLocked          = errors.New("record locked by a concurrent operation")
)

// Error codes rendered to clients
const (
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeInvalidDepositAddress = "INVALID_DEPOSIT_ADDRESS"
	CodeInvalidTxid           = "INVALID_TXID"
	CodeTokenMismatch         = "TOKEN_MISMATCH"
	CodeInvalidStatus         = "INVALID_STATUS"
	CodeInsufficientFunds     = "INSUFFICIENT_FUNDS"
	CodeRecordLocked          = "RECORD_LOCKED"
	CodeInternalError         = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

// Unwrap exposes the sentinel so errors.Is works through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func AlreadyExists(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeUnauthorized, message, ErrUnauthorized)
}

func Unauthenticated(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthenticated, message, ErrUnauthenticated)
}

func InvalidDepositAddress(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidDepositAddress, message, ErrInvalidDepositAddress)
}

func InvalidTxid(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidTxid, message, ErrInvalidTxid)
}

func TokenMismatch(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeTokenMismatch, message, ErrTokenMismatch)
}

func InvalidStatus(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeInvalidStatus, message, ErrInvalidStatus)
}

func InsufficientFunds(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientFunds, message, ErrInsufficientFunds)
}

func RecordLocked(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeRecordLocked, message, ErrRecordLocked)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// Wrap keeps AppErrors as they are and turns anything else into an internal error.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}

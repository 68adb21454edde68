package exception

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is the error shape every usecase surfaces to the gateway and hub.
// Code identifies the failure class, Status is the HTTP mapping.
type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches by code so derived errors with detail messages still compare
// equal to their sentinel via errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

var (
	ErrUnauthenticated = &AppError{Code: "unauthenticated", Status: fiber.StatusUnauthorized, Message: "missing or invalid credentials"}
	ErrForbidden       = &AppError{Code: "forbidden", Status: fiber.StatusForbidden, Message: "you are not a participant of this chat"}
	ErrNotFound        = &AppError{Code: "not_found", Status: fiber.StatusNotFound, Message: "resource not found"}
	ErrIntegrity       = &AppError{Code: "integrity_error", Status: fiber.StatusInternalServerError, Message: "stored message failed integrity check"}
	ErrFormat          = &AppError{Code: "format_error", Status: fiber.StatusInternalServerError, Message: "stored message is malformed"}
	ErrUnavailable     = &AppError{Code: "unavailable", Status: fiber.StatusServiceUnavailable, Message: "storage temporarily unavailable"}
	ErrConflict        = &AppError{Code: "conflict", Status: fiber.StatusConflict, Message: "resource already exists"}
	ErrInvalidRequest  = &AppError{Code: "invalid_request", Status: fiber.StatusBadRequest, Message: "invalid request"}
)

func NotFoundf(format string, args ...interface{}) *AppError {
	return &AppError{Code: ErrNotFound.Code, Status: ErrNotFound.Status, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *AppError {
	return &AppError{Code: ErrForbidden.Code, Status: ErrForbidden.Status, Message: fmt.Sprintf(format, args...)}
}

func Formatf(format string, args ...interface{}) *AppError {
	return &AppError{Code: ErrFormat.Code, Status: ErrFormat.Status, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *AppError {
	return &AppError{Code: ErrConflict.Code, Status: ErrConflict.Status, Message: fmt.Sprintf(format, args...)}
}

func InvalidRequestf(format string, args ...interface{}) *AppError {
	return &AppError{Code: ErrInvalidRequest.Code, Status: ErrInvalidRequest.Status, Message: fmt.Sprintf(format, args...)}
}

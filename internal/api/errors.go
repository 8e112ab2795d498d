package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error is a JSON-serializable API error with an HTTP status code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, msg string) Error {
	return Error{Code: code, Message: msg}
}

func ErrBadRequest() Error {
	return Error{Code: fiber.StatusBadRequest, Message: "invalid JSON request"}
}

// ValidationError reports per-field validation failures.
type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(fields map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: fields,
	}
}

// ErrorHandler renders any handler error as a JSON error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Code).JSON(apiErr)
	}
	var valErr ValidationError
	if errors.As(err, &valErr) {
		return c.Status(valErr.Status).JSON(valErr)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, err.Error()))
}

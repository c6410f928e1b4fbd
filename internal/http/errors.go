package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"linkdex/internal/jobs"
	"linkdex/internal/store"
)

// fail maps domain errors onto the error envelope with a stable code.
// Unknown errors are reported as UNAVAILABLE without leaking internals
// beyond the error string.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "UNAVAILABLE"

	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, store.ErrAlreadyExists):
		status, code = fiber.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, store.ErrInvalid):
		status, code = fiber.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, store.ErrVectorNotInitialized):
		status, code = fiber.StatusConflict, "VECTOR_NOT_INITIALIZED"
	case errors.Is(err, store.ErrNotConfigured):
		status, code = fiber.StatusServiceUnavailable, "NOT_CONFIGURED"
	case errors.Is(err, jobs.ErrBusy):
		status, code = fiber.StatusConflict, "BUSY"
	}

	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Error:   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Code:    "INVALID_ARGUMENT",
		Error:   msg,
	})
}

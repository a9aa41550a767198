package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

const msgInternal = "Something went wrong"

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindAuth:
		return fiber.StatusUnauthorized
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber error handler. Domain errors keep their message; fiber's own errors
// (unknown route, bad method) keep their status; everything else is logged and hidden behind a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := StatusFor(appErr.Kind)
		msg := appErr.Message
		if status == fiber.StatusInternalServerError {
			log.Printf("http: %s %s: %v", c.Method(), c.Path(), err)
			msg = msgInternal
		}
		return c.Status(status).JSON(ErrorResponse{Message: msg})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Message: fe.Message})
	}
	log.Printf("http: %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: msgInternal})
}

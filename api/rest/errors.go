package rest

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tryon/api/model"
	"tryon/validate"
)

// ErrorHandler turns every failure into the response envelope. Rejections
// carry their reason token; everything else collapses into a generic 500 so
// no internal detail leaks to the caller beyond the error summary.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var rejection *validate.Rejection
	if errors.As(err, &rejection) {
		return c.Status(statusForReason(rejection.Reason)).JSON(model.ErrorResponse{
			Success: false,
			Detail:  rejection.Detail,
			Reason:  rejection.Reason.String(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(model.ErrorResponse{
			Success: false,
			Detail:  fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
		Success: false,
		Detail:  fmt.Sprintf("Internal Server Error: %s", err),
	})
}

// statusForReason maps input problems to 400. generation_empty is the one
// rejection the caller cannot fix by changing the upload, so it stays a 500.
func statusForReason(reason validate.Reason) int {
	if reason == validate.ReasonGenerationEmpty {
		return fiber.StatusInternalServerError
	}

	return fiber.StatusBadRequest
}

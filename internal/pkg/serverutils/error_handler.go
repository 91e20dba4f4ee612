package serverutils

import (
	"errors"
	"log"

	"corrective-rag-be/pkg/rag/ragerror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps errors escaping the controllers onto HTTP
// status codes with the standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		case errors.Is(err, ragerror.ErrEmptyQuery):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, ragerror.ErrUnknownSession):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		default:
			log.Printf("[ERROR] Unhandled error: %v", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
		}
	}
}

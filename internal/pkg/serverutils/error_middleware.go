package serverutils

import (
	"log"

	"ai-casefile-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into the JSON envelope.
// Services return apperror kinds; the mapping onto status codes lives here
// and nowhere else.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		// Fiber's own sentinel errors (404 on unknown routes, upgrade
		// required, body too large) already carry their status.
		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Message))
		}

		status := statusForKind(apperror.KindOf(err))
		if status == fiber.StatusInternalServerError {
			// Unexpected errors get logged with detail but surfaced opaque.
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			return ctx.Status(status).JSON(ErrorResponse("internal server error"))
		}

		return ctx.Status(status).JSON(ErrorResponse(err.Error()))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindNotFound, apperror.KindUnknownOperation:
		return fiber.StatusNotFound
	case apperror.KindCooldownActive:
		return fiber.StatusTooManyRequests
	case apperror.KindUpstreamGeneration:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

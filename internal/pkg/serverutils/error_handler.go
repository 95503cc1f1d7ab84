package serverutils

import (
	"errors"
	"strings"

	"astu-route-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorHandlerMiddleware renders errors returned by handlers down the chain.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// WriteError renders err as {success, code, message, details}. Fiber errors keep
// their status; anything unknown becomes a 500 INTERNAL_ERROR.
func WriteError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fiberErr.Code), " ", "_"))
		return ctx.Status(fiberErr.Code).JSON(ErrorBody{
			Code:    code,
			Message: fiberErr.Message,
		})
	}

	appErr := apperror.From(err)
	message := appErr.Message
	if appErr.Code == apperror.CodeInternal {
		message = "An unexpected error occurred"
	}
	return ctx.Status(appErr.Status).JSON(ErrorBody{
		Code:    string(appErr.Code),
		Message: message,
		Details: appErr.Details,
	})
}

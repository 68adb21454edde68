package config

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/exception"
)

func NewFiber(cfg *common.Config) *fiber.App {
	appName := cfg.GetAppConfig()
	return fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		AppName:       appName,
		ErrorHandler:  ErrorHandler,
	})
}

// ErrorHandler maps typed usecase errors onto the JSON error envelope. It
// never exposes stack traces or internals beyond the entity ids the caller
// already knows.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var appErr *exception.AppError
	if errors.As(err, &appErr) {
		return ctx.Status(appErr.Status).JSON(res.ErrorResponse{
			Status:     appErr.Code,
			StatusCode: appErr.Status,
			Error:      appErr.Message,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(res.ErrorResponse{
			Status:     "error",
			StatusCode: fiberErr.Code,
			Error:      fiberErr.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(res.ErrorResponse{
		Status:     "internal_error",
		StatusCode: fiber.StatusInternalServerError,
		Error:      "something went wrong",
	})
}

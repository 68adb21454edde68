package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/usecase"
)

type UserHandler struct {
	usecase.UserUsecase
	*logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{UserUsecase: userUsecase, Logger: logger}
}

func (handler *UserHandler) GetUserByToken(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 8 {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing Authorization header",
		})
	}

	userResponse, err := handler.UserUsecase.GetUserByToken(ctx.Context(), authHeader[7:])
	if err != nil {
		handler.Logger.WithError(err).Errorln("Failed to get user by token")
		return err
	}

	response := res.CommonResponse[res.UserResponse]{
		Message:    "Successfully To Get User By Token",
		StatusCode: fiber.StatusOK,
		Data:       userResponse,
	}
	return ctx.Status(fiber.StatusOK).JSON(response)
}

func (handler *UserHandler) GetAllUsers(ctx *fiber.Ctx) error {
	userResponses, err := handler.UserUsecase.GetAllUsers(ctx.Context())
	if err != nil {
		handler.Logger.WithError(err).Errorln("Failed to get all users")
		return err
	}

	responses := res.CommonResponse[[]res.UserResponse]{
		Message:    "Successfully To Get All User",
		StatusCode: fiber.StatusOK,
		Data:       userResponses,
	}
	return ctx.Status(fiber.StatusOK).JSON(responses)
}

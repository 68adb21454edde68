package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/security"
)

type Middleware struct {
	*common.Config
	*security.JWT
	Log *logrus.Logger
}

func NewMiddleware(config *common.Config, JWT *security.JWT, logger *logrus.Logger) *Middleware {
	return &Middleware{Config: config, JWT: JWT, Log: logger}
}

func (middleware *Middleware) JWTProtected(c *fiber.Ctx) error {
	secretKey := middleware.GetJwtConfig()

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: secretKey},
		ContextKey: "jwt",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			middleware.Log.WithError(err).Error("Failed to validate JWT")
			return c.Status(fiber.StatusUnauthorized).JSON(res.ErrorResponse{
				Status:     "unauthenticated",
				StatusCode: fiber.StatusUnauthorized,
				Error:      "Token is not valid",
			})
		},
	})(c)
}

// ExtractUserID resolves the bearer token to a user id and stores it in the
// request locals for the handlers downstream.
func (middleware *Middleware) ExtractUserID(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if len(authHeader) < 8 {
		return c.Status(fiber.StatusUnauthorized).JSON(res.ErrorResponse{
			Status:     "unauthenticated",
			StatusCode: fiber.StatusUnauthorized,
			Error:      "Missing Authorization header",
		})
	}

	userID, err := middleware.JWT.GetUserIdFromToken(authHeader[7:])
	if err != nil {
		middleware.Log.WithError(err).Error("Failed to extract user ID from token")
		return c.Status(fiber.StatusUnauthorized).JSON(res.ErrorResponse{
			Status:     "unauthenticated",
			StatusCode: fiber.StatusUnauthorized,
			Error:      "Failed to extract user ID from token",
		})
	}

	c.Locals("user_id", userID)
	return c.Next()
}

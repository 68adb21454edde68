package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/fmpberger88/EnigmaTalk/handler"
	"github.com/fmpberger88/EnigmaTalk/middleware"
)

type ConfigRoute struct {
	*fiber.App
	*middleware.Middleware
	*handler.AuthHandler
	*handler.UserHandler
	*handler.ChatHandler
}

func (rc *ConfigRoute) GetRoute() {
	rc.GetPublicRoute()
	rc.GetProtectedRoute()
}

func (rc *ConfigRoute) GetPublicRoute() {
	app := rc.App.Group("/api/v1")
	app.Post("/auth/register", rc.AuthHandler.RegisterUser)
	app.Post("/auth/login", rc.AuthHandler.LoginUser)
}

func (rc *ConfigRoute) GetProtectedRoute() {
	app := rc.App.Group("/api/v1")
	app.Use(rc.Middleware.JWTProtected)
	app.Use(rc.Middleware.ExtractUserID)

	app.Get("/auth/me", rc.UserHandler.GetUserByToken)

	app.Get("/users", rc.UserHandler.GetAllUsers)

	app.Post("/chats", rc.ChatHandler.CreateChat)
	app.Get("/chats", rc.ChatHandler.GetAllChats)

	app.Post("/chats/:chatId/messages", rc.ChatHandler.SendMessage)
	app.Get("/chats/:chatId/messages", rc.ChatHandler.GetMessagesByID)

	app.Post("/messages/:messageId/read", rc.ChatHandler.MarkMessageRead)
}

func (rc *ConfigRoute) GetWebSocketRoute(wsHandler *handler.WebSocketHandler) {
	rc.App.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	rc.App.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/config/logger"
	"github.com/fmpberger88/EnigmaTalk/handler"
	"github.com/fmpberger88/EnigmaTalk/middleware"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/routes"
	"github.com/fmpberger88/EnigmaTalk/security"
	"github.com/fmpberger88/EnigmaTalk/usecase"
)

type AppConfig struct {
	*fiber.App
	*common.Config
	*validator.Validate
	*logrus.Logger
	AppLog *logger.AppLogger
	*DBConfig
	*security.JWT
	Codec *security.Codec
	*middleware.Middleware
}

func RunServer() {
	newConfig := common.NewViper()
	app := NewFiber(newConfig)
	log := logrus.New()
	appLog := logger.NewLogger()
	newDB := NewDB(newConfig, appLog)
	newValidator := validator.New()
	newJWT := security.NewJWT(newConfig)
	newMiddleware := middleware.NewMiddleware(newConfig, newJWT, log)

	newCodec, err := security.NewCodec(newConfig.GetEncryptionKey())
	if err != nil {
		log.WithError(err).Fatal("Invalid encryption key")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:8080",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	App(&AppConfig{
		App:        app,
		Config:     newConfig,
		Validate:   newValidator,
		Logger:     log,
		AppLog:     appLog,
		DBConfig:   newDB,
		JWT:        newJWT,
		Codec:      newCodec,
		Middleware: newMiddleware,
	})

	if err := app.Listen(":" + newConfig.GetServerPort()); err != nil {
		log.WithError(err).Errorf("Failed to start server: %v", err)
	}
}

func App(aC *AppConfig) {
	newStore := repository.NewGormStore(aC.GetDB())

	newAuthUsecase := usecase.NewAuthUsecase(newStore, aC.Validate, aC.Logger, aC.JWT)
	newUserUsecase := usecase.NewUserUsecase(newStore, aC.AppLog, aC.JWT)
	newChatUsecase := usecase.NewChatUsecase(newStore, aC.Codec, aC.Logger)
	newScheduler := usecase.NewDeletionScheduler(newStore, aC.Logger, aC.Config.GetMessageTTL())

	wsHandler := handler.NewWebSocketHandler(newChatUsecase, newAuthUsecase, aC.Logger)

	newAuthHandler := handler.NewAuthHandler(newAuthUsecase, aC.Logger)
	newUserHandler := handler.NewUserHandler(newUserUsecase, aC.Logger)
	newChatHandler := handler.NewChatHandler(newChatUsecase, newScheduler, wsHandler, aC.Logger)

	route := routes.ConfigRoute{
		App:         aC.App,
		Middleware:  aC.Middleware,
		AuthHandler: newAuthHandler,
		UserHandler: newUserHandler,
		ChatHandler: newChatHandler,
	}
	route.GetRoute()
	route.GetWebSocketRoute(wsHandler)
}

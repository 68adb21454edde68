package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/fmpberger88/EnigmaTalk/config/common"
	"github.com/fmpberger88/EnigmaTalk/config/logger"
	"github.com/fmpberger88/EnigmaTalk/entity"
)

type DBConfig struct {
	*gorm.DB
	*logger.AppLogger
}

func NewDB(config *common.Config, log *logger.AppLogger) *DBConfig {
	db := initDatabase(config, log)
	return &DBConfig{DB: db, AppLogger: log}
}

func (db *DBConfig) GetDB() *gorm.DB {
	return db.DB
}

func initDatabase(cfg *common.Config, log *logger.AppLogger) *gorm.DB {
	dbHost, dbUser, dbPassword, dbName, dbPort := cfg.GetDatabaseConfig()
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, dbUser, dbPassword, dbName, dbPort,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "t_",
			SingularTable: true,
		},
	})
	if err != nil {
		log.Http.Error.Error().Err(err).Msg("failed to connect to database")
		panic("failed to connect database")
	}

	conn, err := db.DB()
	if err != nil {
		panic("failed to connect database")
	}

	var user entity.User
	var chat entity.Chat
	var chatParticipant entity.ChatParticipant
	var messages entity.Messages
	if err := db.AutoMigrate(&user, &chat, &chatParticipant, &messages); err != nil {
		panic("failed run migration")
	}

	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(100)
	conn.SetConnMaxLifetime(time.Second * time.Duration(300))

	log.Http.Info.Info().Msg("Connection opened to database")
	return db
}

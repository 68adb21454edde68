package common

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Viper *viper.Viper
}

func NewViper() *Config {
	config := viper.New()
	config.SetConfigFile(".env")
	config.AddConfigPath("../")
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		panic("failed read config")
	}
	return &Config{Viper: config}
}

func (c *Config) GetAppConfig() (appName string) {
	return c.Viper.GetString("APP_NAME")
}

func (c *Config) GetServerPort() string {
	port := c.Viper.GetString("PORT")
	if port == "" {
		port = "7720"
	}
	return port
}

func (c *Config) GetDatabaseConfig() (dbHost, dbUser, dbPassword, dbName, dbPort string) {
	dbHost = c.Viper.GetString("DB_HOSTNAME")
	dbUser = c.Viper.GetString("DB_USER")
	dbPassword = c.Viper.GetString("DB_PASSWORD")
	dbName = c.Viper.GetString("DB_NAME")
	dbPort = c.Viper.GetString("DB_PORT")

	return dbHost, dbUser, dbPassword, dbName, dbPort
}

func (c *Config) GetJwtConfig() []byte {
	jwtSecret := c.Viper.GetString("JWT_SECRET")
	return []byte(jwtSecret)
}

// GetEncryptionKey returns the hex-encoded 32-byte AES key used to seal
// message bodies at rest.
func (c *Config) GetEncryptionKey() string {
	return c.Viper.GetString("ENCRYPTION_KEY")
}

// GetMessageTTL is the disappearing-message delay; zero means the default.
func (c *Config) GetMessageTTL() time.Duration {
	seconds := c.Viper.GetInt("MESSAGE_TTL_SECONDS")
	return time.Duration(seconds) * time.Second
}

package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Identity IdentityConfig
}

type AppConfig struct {
	Port string
	Env  string
	// ClientID scopes the persisted identity session and its change channel.
	ClientID string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

type IdentityConfig struct {
	MinPasswordLength int
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads a dotenv file at path. Environment variables override file
// values; a missing file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_CLIENT_ID", "default")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("IDENTITY_MIN_PASSWORD_LENGTH", 6)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	sessionExpiry, err := time.ParseDuration(v.GetString("JWT_SESSION_EXPIRY"))
	if err != nil {
		sessionExpiry = 30 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			ClientID: v.GetString("APP_CLIENT_ID"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			SessionExpiry: sessionExpiry,
		},
		Identity: IdentityConfig{
			MinPasswordLength: v.GetInt("IDENTITY_MIN_PASSWORD_LENGTH"),
		},
	}

	return config, nil
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Bot       BotConfig
	Shortener ShortenerConfig
	Tokens    TokenConfig
}

type AppConfig struct {
	Port        string
	BaseURL     string
	Environment string
	LogFilePath string
	RedisURL    string
	NatsURL     string
}

type DatabaseConfig struct {
	Connection string
}

type BotConfig struct {
	AdminIDs       []int64
	IndexChannelID int64
	LogChannelID   int64
	PageSize       int
	MinQueryLength int
}

type ShortenerConfig struct {
	APIKey           string
	APIURL           string
	CallbackEndpoint string
}

type TokenConfig struct {
	PerVerification int
	PerFile         int
	VerificationTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "8080"),
			BaseURL:     getEnv("APP_BASE_URL", ""),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Bot: BotConfig{
			AdminIDs:       getEnvAsInt64List("ADMIN_IDS", nil),
			IndexChannelID: getEnvAsInt64("INDEX_CHANNEL_ID", 0),
			LogChannelID:   getEnvAsInt64("LOG_CHANNEL_ID", 0),
			PageSize:       getEnvAsInt("SEARCH_PAGE_SIZE", 5),
			MinQueryLength: getEnvAsInt("MIN_QUERY_LENGTH", 3),
		},
		Shortener: ShortenerConfig{
			APIKey:           getEnv("SHORTENER_API_KEY", ""),
			APIURL:           getEnv("SHORTENER_API_URL", ""),
			CallbackEndpoint: getEnv("VERIFY_CALLBACK_ENDPOINT", "/verify_callback"),
		},
		Tokens: TokenConfig{
			PerVerification: getEnvAsInt("TOKENS_PER_VERIFICATION", 10),
			PerFile:         getEnvAsInt("TOKENS_PER_FILE", 1),
			VerificationTTL: time.Duration(getEnvAsInt("TOKEN_EXPIRY_SECONDS", 3600)) * time.Second,
		},
	}
}

// IsAdmin reports whether the given transport user id is configured as an admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64List(key string, fallback []int64) []int64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var values []int64
	for _, part := range strings.Split(strValue, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if value, err := strconv.ParseInt(part, 10, 64); err == nil {
			values = append(values, value)
		}
	}
	return values
}

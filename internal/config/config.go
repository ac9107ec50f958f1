package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rajivgeraev/skillzone-api/internal/logger"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config структура конфигурации
type Config struct {
	AppEnv           string
	Port             string
	WSPort           string
	TelegramBotToken string
	JWTSecret        string
	AdminTelegramIDs []int64
	StorageDriver    string
	RunMigrations    bool
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	CloudinaryConfig CloudinaryConfig
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CloudinaryConfig содержит конфигурацию для Cloudinary
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	UploadFolder string
}

// IsDevelopment сообщает, запущено ли приложение в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Info(".env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "skillzone_user"),
		Password: getEnv("PGPASSWORD", "skillzone_pass"),
		Name:     getEnv("PGDATABASE", "skillzone"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
		MaxConns: int32(getEnvInt("PG_MAX_CONNS", 10)),
		MinConns: int32(getEnvInt("PG_MIN_CONNS", 2)),
	}

	cloudinaryConfig := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "skillzone"),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "skillzone/avatars"),
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "production"),
		Port:             getEnv("PORT", "8080"),
		WSPort:           getEnv("WS_PORT", "8081"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AdminTelegramIDs: getEnvIDs("ADMIN_TELEGRAM_IDS"),
		StorageDriver:    getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		RunMigrations:    getEnvBool("DB_MIGRATE", true),
		DatabaseConfig:   dbConfig,
		CloudinaryConfig: cloudinaryConfig,
	}
	cfg.DatabaseURL = getEnv("DATABASE_URL", dbConfig.URL())

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsAdminTelegramID сообщает, выдаются ли аккаунту права администратора
func (c *Config) IsAdminTelegramID(telegramID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// URL формирует строку подключения к базе данных
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("не задана переменная окружения JWT_SECRET")
	}
	// Без токена бота вход через Telegram невозможен; в разработке допускаем
	if c.TelegramBotToken == "" && !c.IsDevelopment() {
		return errors.New("не задана переменная окружения TELEGRAM_BOT_TOKEN")
	}
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER: %s", c.StorageDriver)
	}
	return nil
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Get().Warnf("некорректное значение %s=%q, используем %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvIDs разбирает список Telegram ID через запятую, некорректные значения пропускаются
func getEnvIDs(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			logger.Get().Warnf("некорректный Telegram ID в %s: %q", key, part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

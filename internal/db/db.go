package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/skillzone-api/internal/config"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
)

const (
	connectTimeout = 10 * time.Second
	queryTimeout   = 5 * time.Second
)

// Pool - общий пул соединений приложения
var Pool *pgxpool.Pool

// poolConfig собирает настройки пула из конфигурации
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}
	if cfg.DatabaseConfig.MaxConns > 0 {
		pc.MaxConns = cfg.DatabaseConfig.MaxConns
	}
	if cfg.DatabaseConfig.MinConns > 0 {
		pc.MinConns = cfg.DatabaseConfig.MinConns
	}
	pc.MaxConnIdleTime = 5 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// InitDB открывает пул и проверяет соединение
func InitDB(cfg *config.Config) error {
	pc, err := poolConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	Pool = pool
	logger.Get().Infof("Подключено к базе %s:%s/%s (соединений до %d)",
		cfg.DatabaseConfig.Host, cfg.DatabaseConfig.Port, cfg.DatabaseConfig.Name, pc.MaxConns)
	return nil
}

// Ping проверяет доступность базы. Без пула (хранилище в памяти) всегда успешен
func Ping(ctx context.Context) error {
	if Pool == nil {
		return nil
	}
	return Pool.Ping(ctx)
}

// CloseDB закрывает пул, если он был открыт
func CloseDB() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}

// GetContext возвращает контекст с таймаутом одного запроса
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
)

// DBTX - общий интерфейс пула соединений (pgxpool.Pool и моки в тестах)
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует хранилище приложения поверх PostgreSQL
type Store struct {
	pool DBTX
}

// NewStore создает хранилище на основе пула соединений
func NewStore(pool DBTX) *Store {
	return &Store{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// mapError переводит ошибки pgx в ошибки приложения
func mapError(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}

	// Ошибки бизнес-правил проходят без изменений
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514", "23503", "22P02":
			return apperrors.Wrap(err, apperrors.KindValidation, "constraint_violation", pgErr.Message)
		}
	}

	return apperrors.Storage(fmt.Errorf("%s: %w", op, err))
}

// likePattern экранирует спецсимволы LIKE и оборачивает строку в %
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

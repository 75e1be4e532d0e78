// Package admin — repository.go работает с таблицей admin_login_attempts.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с админ-таблицами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, remoteAddr string, success bool) error {
	query := `INSERT INTO admin_login_attempts (remote_addr, success) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, remoteAddr, success); err != nil {
		return fmt.Errorf("ошибка записи попытки входа: %w", err)
	}
	return nil
}

// GetRecentAttempts возвращает количество неудачных попыток за указанный период.
func (r *Repository) GetRecentAttempts(ctx context.Context, remoteAddr string, period time.Duration) (int, error) {
	since := time.Now().Add(-period)
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE remote_addr = $1 AND success = FALSE AND attempt_time >= $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, remoteAddr, since).Scan(&count)
	return count, err
}

// PruneAttempts удаляет записи старше before.
func (r *Repository) PruneAttempts(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM admin_login_attempts WHERE attempt_time < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки попыток входа: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Package catalog — repository.go работает с таблицами game_configs,
// feed_settings и audit_logs.
//
// Все запросы идут через trmpgx.DefaultCtxGetter: если в контексте есть
// транзакция от trm.Manager, запрос выполнится в ней.
package catalog

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/casino-feed/internal/common"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const gameColumns = `id, game_id, name, provider, image_path, is_active, ladder_type, custom_ladder, updated_at`

// Repository работает с конфигурацией ленты в PostgreSQL.
type Repository struct {
	db     *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db, getter: trmpgx.DefaultCtxGetter}
}

func (r *Repository) conn(ctx context.Context) trmpgx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func scanGame(row pgx.Row) (*GameConfig, error) {
	var g GameConfig
	err := row.Scan(
		&g.ID, &g.GameID, &g.Name, &g.Provider, &g.ImagePath,
		&g.IsActive, &g.LadderType, &g.CustomLadder, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGames возвращает все игры (и активные, и выключенные).
func (r *Repository) ListGames(ctx context.Context) ([]GameConfig, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+gameColumns+` FROM game_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса игр: %w", err)
	}
	defer rows.Close()

	var games []GameConfig
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения игры: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// GetGame возвращает игру по game_id.
func (r *Repository) GetGame(ctx context.Context, gameID string) (*GameConfig, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+gameColumns+` FROM game_configs WHERE game_id = $1`, gameID)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения игры %s: %w", gameID, err)
	}
	return g, nil
}

// InsertGameIfMissing добавляет игру каталога, если её ещё нет.
// Возвращает true, если строка вставлена.
func (r *Repository) InsertGameIfMissing(ctx context.Context, g GameConfig) (bool, error) {
	query := `
		INSERT INTO game_configs (game_id, name, provider, image_path, is_active, ladder_type, custom_ladder)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id) DO NOTHING
	`
	tag, err := r.conn(ctx).Exec(ctx, query,
		g.GameID, g.Name, g.Provider, g.ImagePath, g.IsActive, g.LadderType, g.CustomLadder,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка добавления игры %s: %w", g.GameID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateGame применяет частичное обновление. Меняются только заданные поля.
func (r *Repository) UpdateGame(ctx context.Context, gameID string, upd GameUpdate) error {
	if upd.Empty() {
		return nil
	}

	q := psql.Update("game_configs").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"game_id": gameID})
	if upd.IsActive != nil {
		q = q.Set("is_active", *upd.IsActive)
	}
	if upd.LadderType != nil {
		q = q.Set("ladder_type", *upd.LadderType)
	}
	if upd.CustomLadder != nil {
		if *upd.CustomLadder == "" {
			q = q.Set("custom_ladder", nil)
		} else {
			q = q.Set("custom_ladder", *upd.CustomLadder)
		}
	}
	if upd.ImagePath != nil {
		q = q.Set("image_path", *upd.ImagePath)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	tag, err := r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления игры %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrGameNotFound
	}
	return nil
}

// CountGames возвращает количество игр в каталоге.
func (r *Repository) CountGames(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM game_configs`).Scan(&n)
	return n, err
}

// ListSettings возвращает все настройки ленты.
func (r *Repository) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT key, value FROM feed_settings`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса настроек: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("ошибка чтения настройки: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// SetSetting записывает настройку (upsert).
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO feed_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.conn(ctx).Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("ошибка записи настройки %s: %w", key, err)
	}
	return nil
}

// SetSettingIfMissing записывает настройку, только если её ещё нет.
func (r *Repository) SetSettingIfMissing(ctx context.Context, key, value string) error {
	query := `INSERT INTO feed_settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	if _, err := r.conn(ctx).Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("ошибка записи настройки %s: %w", key, err)
	}
	return nil
}

// DeleteSetting удаляет настройку (значение вернётся к дефолтному).
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM feed_settings WHERE key = $1`, key)
	return err
}

// InsertAudit добавляет запись в журнал изменений.
func (r *Repository) InsertAudit(ctx context.Context, entry AuditLog) error {
	q := psql.Insert("audit_logs").
		Columns("admin_user_id", "entity", "entity_id", "field", "old_value", "new_value").
		Values(entry.AdminUserID, entry.Entity, entry.EntityID, entry.Field, entry.OldValue, entry.NewValue)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	if _, err := r.conn(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("ошибка записи в журнал: %w", err)
	}
	return nil
}

// ListAudit возвращает последние записи журнала, новые первыми.
func (r *Repository) ListAudit(ctx context.Context, entity string, limit int) ([]AuditLog, error) {
	q := psql.Select("id", "admin_user_id", "entity", "entity_id", "field", "old_value", "new_value", "created_at").
		From("audit_logs").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	if entity != "" {
		q = q.Where(sq.Eq{"entity": entity})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса журнала: %w", err)
	}
	defer rows.Close()

	var out []AuditLog
	for rows.Next() {
		var a AuditLog
		if err := rows.Scan(&a.ID, &a.AdminUserID, &a.Entity, &a.EntityID, &a.Field, &a.OldValue, &a.NewValue, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

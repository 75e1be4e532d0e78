// Package feed — repository.go работает с таблицей transactions.
// Список ленты собирается через squirrel: фильтры необязательные,
// курсор по id, новые записи первыми.
package feed

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var txColumns = []string{
	"id", "username", "amount::text", "currency", "type", "game", "multiplier", "timestamp", "is_simulation",
}

// Repository хранит транзакции ленты в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		t   Transaction
		typ string
	)
	err := row.Scan(&t.ID, &t.Username, &t.Amount, &t.Currency, &typ, &t.Game, &t.Multiplier, &t.Timestamp, &t.IsSimulation)
	if err != nil {
		return nil, err
	}
	t.Type = generator.Type(typ)
	return &t, nil
}

// List возвращает страницу ленты по фильтру.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Transaction, error) {
	q := psql.Select(txColumns...).
		From("transactions").
		OrderBy("id DESC").
		Limit(uint64(f.Limit))

	if f.Cursor > 0 {
		q = q.Where(sq.Lt{"id": f.Cursor})
	}
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": string(f.Type)})
	}
	if f.Search != "" {
		q = q.Where(sq.ILike{"username": "%" + f.Search + "%"})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ленты: %w", err)
	}
	defer rows.Close()

	items := make([]Transaction, 0, f.Limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения транзакции: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Create сохраняет транзакцию и возвращает её с id и временем из БД.
func (r *Repository) Create(ctx context.Context, t Transaction) (*Transaction, error) {
	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	q := psql.Insert("transactions").
		Columns("username", "amount", "currency", "type", "game", "multiplier", "timestamp", "is_simulation").
		Values(t.Username, t.Amount, t.Currency, string(t.Type), t.Game, t.Multiplier, ts, t.IsSimulation).
		Suffix("RETURNING id, username, amount::text, currency, type, game, multiplier, timestamp, is_simulation")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}

	created, err := scanTransaction(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения транзакции: %w", err)
	}
	return created, nil
}

// Delete удаляет транзакцию по id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления транзакции %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTransactionNotFound
	}
	return nil
}

// Count возвращает количество транзакций.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

// Stats считает прибыль площадки: проигрыши игроков в плюс, выигрыши в минус.
// "Сегодня" считается по календарным суткам базы.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'LOSS' THEN amount ELSE -amount END), 0)::text,
			COUNT(*),
			COALESCE(SUM(CASE
				WHEN timestamp > NOW() - INTERVAL '24 hours' AND type = 'LOSS' THEN amount
				WHEN timestamp > NOW() - INTERVAL '24 hours' AND type = 'WIN' THEN -amount
				ELSE 0
			END), 0)::text,
			COALESCE(SUM(CASE
				WHEN date_trunc('day', timestamp) = date_trunc('day', NOW()) AND type = 'LOSS' THEN amount
				WHEN date_trunc('day', timestamp) = date_trunc('day', NOW()) AND type = 'WIN' THEN -amount
				ELSE 0
			END), 0)::text
		FROM transactions
	`
	var total, last24h, today string
	var s Stats
	if err := r.db.QueryRow(ctx, query).Scan(&total, &s.TransactionCount, &last24h, &today); err != nil {
		return nil, fmt.Errorf("ошибка расчёта статистики: %w", err)
	}

	s.TotalProfit = decimalOrZero(total)
	s.Last24hProfit = decimalOrZero(last24h)
	s.TodayProfit = decimalOrZero(today)
	return &s, nil
}

func decimalOrZero(raw string) float64 {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// PruneSimulated удаляет синтетические транзакции старше before.
// Ручные и стартовые записи не трогаются.
func (r *Repository) PruneSimulated(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE is_simulation = TRUE AND timestamp < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки ленты: %w", err)
	}
	return tag.RowsAffected(), nil
}

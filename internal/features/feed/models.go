// Package feed реализует ленту транзакций: тик эмиттера, хранение в PostgreSQL,
// раздачу подписчикам (SSE, NATS, Telegram) и публичное HTTP API.
// models.go описывает сохранённую транзакцию, фильтры списка и статистику.
package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

// Лимиты выдачи списка
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Transaction — строка таблицы transactions.
// JSON-форма совпадает с generator.Transaction плюс id.
type Transaction struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Amount       string         `json:"amount"`
	Currency     string         `json:"currency"`
	Type         generator.Type `json:"type"`
	Game         string         `json:"game"`
	Multiplier   *string        `json:"multiplier,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	IsSimulation bool           `json:"isSimulation"`
}

// FromGenerated переносит событие генератора в строку для сохранения.
func FromGenerated(tx *generator.Transaction) Transaction {
	return Transaction{
		Username:     tx.Username,
		Amount:       tx.Amount,
		Currency:     tx.Currency,
		Type:         tx.Type,
		Game:         tx.Game,
		Multiplier:   tx.Multiplier,
		Timestamp:    tx.Timestamp,
		IsSimulation: tx.IsSimulation,
	}
}

// MultiplierValue возвращает множитель числом (0, если его нет).
func (t Transaction) MultiplierValue() float64 {
	if t.Multiplier == nil {
		return 0
	}
	v, _ := common.ParseMultiplier(*t.Multiplier)
	return v
}

// ListFilter — параметры GET /api/transactions.
type ListFilter struct {
	Limit  int
	Cursor int64 // id < cursor; 0 — с самого начала
	Type   generator.Type
	Search string
}

// Normalize приводит лимит к допустимому диапазону.
func (f *ListFilter) Normalize() {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	f.Search = strings.TrimSpace(f.Search)
}

// Page — страница ленты.
type Page struct {
	Items      []Transaction `json:"items"`
	NextCursor *int64        `json:"nextCursor,omitempty"`
}

// Stats — прибыль площадки: сумма проигрышей минус сумма выигрышей.
type Stats struct {
	TotalProfit      float64 `json:"totalProfit"`
	TodayProfit      float64 `json:"todayProfit"`
	Last24hProfit    float64 `json:"last24hProfit"`
	TransactionCount int64   `json:"transactionCount"`
}

// FlexAmount принимает сумму и числом, и строкой: 25000 и "25000.00".
type FlexAmount string

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*a = FlexAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = FlexAmount(n.String())
	return nil
}

// CreateRequest — тело POST /api/transactions.
type CreateRequest struct {
	Username   string     `json:"username"`
	Amount     FlexAmount `json:"amount"`
	Currency   string     `json:"currency"`
	Type       string     `json:"type"`
	Game       string     `json:"game"`
	Multiplier *string    `json:"multiplier"`
}

// ValidationError — ошибка валидации с указанием поля.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return common.ErrInvalidTransaction
}

// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: форматирование сумм и множителей, работа с часовым поясом.
package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount форматирует сумму ставки ровно с двумя знаками после запятой.
//
// Примеры:
//
//	FormatAmount(25)     → "25.00"
//	FormatAmount(7.5)    → "7.50"
//	FormatAmount(120000) → "120000.00"
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// ParseAmount разбирает сумму из строки и нормализует её до двух знаков.
// Возвращает ошибку для нечисловых и неположительных значений.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("сумма %q: %w", raw, ErrInvalidTransaction)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("сумма должна быть положительной: %w", ErrInvalidTransaction)
	}
	return d.Round(2), nil
}

// FormatMultiplier возвращает множитель в виде "12.5x" (всегда один знак после запятой).
func FormatMultiplier(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64) + "x"
}

// ParseMultiplier разбирает строку вида "12.5x" обратно в число.
func ParseMultiplier(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "x")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Round1 округляет до одного знака после запятой.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// LoadLocation загружает часовой пояс по имени.
// Если не удалось — используем UTC, чтобы сервис не падал на старте.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayKey возвращает дату в формате 2006-01-02 в заданном часовом поясе.
// Используется как зерно суточного джиттера генератора.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// Package common — numbers.go форматирует крупные суммы для человекочитаемых сообщений
// (анонсы в Telegram, логи).
package common

import (
	"fmt"
	"strings"
)

// FormatNumber форматирует целое число с разделителями тысяч (пробелами).
// Пример: FormatNumber(25000) → "25 000"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	rest := n / 1000
	last := n % 1000
	return fmt.Sprintf("%s %03d", FormatNumber(rest), last)
}

// FormatMoney форматирует сумму вида "25000.00" как "25 000.00 ₺".
// Если строка не похожа на число — возвращает её как есть с валютой.
func FormatMoney(amount, currency string) string {
	intPart, frac, found := strings.Cut(amount, ".")
	var n int64
	if _, err := fmt.Sscanf(intPart, "%d", &n); err != nil {
		return strings.TrimSpace(amount + " " + currency)
	}
	out := FormatNumber(n)
	if found {
		out += "." + frac
	}
	return strings.TrimSpace(out + " " + currency)
}

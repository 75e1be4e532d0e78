// Package catalog — ladders.go содержит встроенные лестницы ставок и их разбор/проверку.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"serotonyl.ru/casino-feed/internal/common"
)

// MinCustomLadderSize — минимальная длина кастомной лестницы из админки.
const MinCustomLadderSize = 5

var (
	defaultPragmaticLadder = []float64{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 14, 16, 18, 20, 30, 40, 50, 60, 70, 80, 90, 100,
		120, 140, 160, 200, 240, 280, 300, 320, 360, 400, 500, 600, 700, 800, 900, 1000,
		1200, 1400, 1600, 1800, 2000,
	}
	defaultPlayngoLadder = []float64{
		1, 2, 3, 5, 7, 10, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200, 300, 400, 500,
	}
	defaultNetentLadder = []float64{
		1, 2, 5, 10, 20, 25, 50, 75, 100, 125, 150, 200, 250, 500, 750, 1000,
	}
	defaultHacksawLadder = []float64{
		1, 2, 3, 5, 10, 15, 20, 30, 50, 75, 100, 150, 200, 300, 500, 1000, 1500, 2000,
	}
)

// DefaultLadder возвращает копию встроенной лестницы семейства.
// Для неизвестного типа — лестницу Pragmatic.
func DefaultLadder(t LadderType) []float64 {
	var src []float64
	switch t {
	case LadderPlayngo:
		src = defaultPlayngoLadder
	case LadderNetent:
		src = defaultNetentLadder
	case LadderHacksaw:
		src = defaultHacksawLadder
	default:
		src = defaultPragmaticLadder
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// ProviderLadderFamily — семейство лестницы "по умолчанию" для провайдера.
func ProviderLadderFamily(p Provider) LadderType {
	switch p {
	case ProviderPlayngo:
		return LadderPlayngo
	case ProviderNetent:
		return LadderNetent
	case ProviderOther:
		return LadderHacksaw
	default:
		return LadderPragmatic
	}
}

// ParseLadder разбирает CSV-лестницу так же мягко, как при чтении из БД:
// нечисловые и неположительные значения отбрасываются, остальное сортируется.
// Пустой результат = nil.
func ParseLadder(raw string) []float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var vals []float64
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	return vals
}

// ValidateLadder строго проверяет лестницу при записи из админки:
// все значения числа > 0, строго по возрастанию, минимум MinCustomLadderSize.
func ValidateLadder(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < MinCustomLadderSize {
		return nil, fmt.Errorf("значений %d: %w", len(parts), common.ErrInvalidLadder)
	}
	out := make([]float64, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, fmt.Errorf("значение %q: %w", part, common.ErrInvalidLadder)
		}
		if i > 0 && v <= out[i-1] {
			return nil, fmt.Errorf("%v не больше %v: %w", v, out[i-1], common.ErrInvalidLadder)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatLadder сериализует лестницу обратно в CSV.
func FormatLadder(ladder []float64) string {
	parts := make([]string, len(ladder))
	for i, v := range ladder {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

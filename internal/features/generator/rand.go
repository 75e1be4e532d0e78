// Package generator — синтетический генератор транзакций ленты.
// rand.go содержит источник случайности, взвешенный выбор и суточный джиттер.
package generator

import (
	"math"
	"math/rand/v2"
)

// Source — источник случайности. В тестах подменяется детерминированным.
type Source interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

type pcgSource struct {
	r *rand.Rand
}

func (s *pcgSource) Float64() float64 { return s.r.Float64() }
func (s *pcgSource) IntN(n int) int   { return s.r.IntN(n) }

// NewSource возвращает воспроизводимый источник с заданным зерном.
func NewSource(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DefaultSource — источник со случайным зерном.
// Не потокобезопасен: генератор вызывает его только под своим мьютексом.
func DefaultSource() Source {
	return &pcgSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// uniform — равномерное число в [min, max).
func uniform(src Source, min, max float64) float64 {
	return min + src.Float64()*(max-min)
}

// randInt — целое в [min, max] включительно.
func randInt(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.IntN(max-min+1)
}

// weightedPick возвращает индекс первого кандидата, у которого накопленная
// сумма весов превысила бросок. Отрицательные веса считаются нулевыми.
// Если все веса нулевые — выбор равномерный. Пустой список = -1.
func weightedPick(src Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return src.IntN(len(weights))
	}

	roll := src.Float64() * total
	acc := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if roll < acc {
			return i
		}
	}
	// Накопленная сумма могла недобрать до total из-за округления.
	return last
}

// dayHash — 32-битный хеш строки даты (h = h*31 + c).
// Это не криптография: нужно лишь стабильное число на сутки.
func dayHash(day string) int32 {
	var h int32
	for _, c := range day {
		h = h*31 + int32(c)
	}
	return h
}

// seededRandom — детерминированное псевдослучайное число в [0, 1)
// из дробной части sin(seed)*10000. Качество низкое, зато воспроизводимо.
func seededRandom(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

// dayJitter — множитель веса игры в [0.8, 1.2). Одинаков для одного дня,
// длины названия и номера события, другой на следующий день.
func dayJitter(day string, nameLen int, counter uint64) float64 {
	seed := float64(dayHash(day)) + float64(nameLen) + float64(counter)
	return 0.8 + seededRandom(seed)*0.4
}

// visibleWinThreshold — порог "тиков без заметного выигрыша" для цикла: 15–25.
func visibleWinThreshold(day string, cycle int) int {
	seed := float64(dayHash(day)) + float64(cycle)*7919
	return visibleWinMinTicks + int(seededRandom(seed)*float64(visibleWinMaxTicks-visibleWinMinTicks+1))
}

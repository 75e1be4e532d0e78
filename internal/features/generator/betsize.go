// Package generator — betsize.go рассчитывает сумму ставки.
//
// Два режима:
//   - "естественные" ставки: тир по перцентилю, затем округление,
//     чтобы сумма выглядела выбранной человеком;
//   - лестница: ставка — одна из ступеней лестницы игры.
//
// У игрока есть память: естественная ставка смешивается с прошлой,
// индекс на лестнице дрейфует от прошлого, если игрок был недавно.
package generator

import (
	"math"

	"serotonyl.ru/casino-feed/internal/features/catalog"
)

// MinBet — минимальная ставка ленты.
const MinBet = 5.0

type betTier int

const (
	tierMicro betTier = iota
	tierSmall
	tierMid
	tierHigh
	tierWhale
)

// naturalTiers — диапазоны и шаг округления тиров (для сумм > 100).
var naturalTiers = [...]struct {
	min, max, step float64
}{
	tierMicro: {5, 250, 25},
	tierSmall: {250, 1500, 50},
	tierMid:   {1500, 7500, 250},
	tierHigh:  {7500, 25000, 1000},
	tierWhale: {25000, 120000, 1000},
}

// niceAmounts — "круглые" суммы для диапазона 20–100.
var niceAmounts = []float64{20, 25, 30, 40, 50, 60, 75, 80, 100}

// Перцентильные границы тиров: 70 / 20 / 7 / 2.5 / 0.5.
func rollTier(roll float64) betTier {
	switch {
	case roll < 0.70:
		return tierMicro
	case roll < 0.90:
		return tierSmall
	case roll < 0.97:
		return tierMid
	case roll < 0.995:
		return tierHigh
	default:
		return tierWhale
	}
}

const (
	blendLast      = 0.4
	blendFresh     = 0.6
	driftMin       = 0.7
	driftMax       = 1.3
	stepJitterProb = 0.2
)

// sizeBet возвращает ставку и индекс ступени (-1 для естественных ставок).
func (g *Generator) sizeBet(snap *catalog.Snapshot, game catalog.GameDefinition, user string, recent bool) (float64, int) {
	if game.IsLadderGame() {
		return g.ladderBet(snap.LadderFor(game), user, recent)
	}
	return g.naturalBet(user), -1
}

// naturalBet — естественная ставка с учётом прошлой ставки игрока.
func (g *Generator) naturalBet(user string) float64 {
	tier := rollTier(g.src.Float64())
	if tier == tierWhale && g.state.whaleCooldown > 0 {
		tier = tierMid
	}

	band := naturalTiers[tier]
	fresh := g.roundNatural(uniform(g.src, band.min, band.max), tier)
	if tier == tierWhale {
		g.state.armWhale(randInt(g.src, whaleCooldownMin, whaleCooldownMax))
	}

	bet := fresh
	if h := g.state.user(user); h != nil && h.lastBet > 0 {
		drift := uniform(g.src, driftMin, driftMax)
		bet = math.Round(blendLast*h.lastBet*drift + blendFresh*fresh)
	}
	return math.Max(bet, MinBet)
}

// roundNatural округляет сумму так, как её выбрал бы человек.
func (g *Generator) roundNatural(v float64, tier betTier) float64 {
	switch {
	case v < 20:
		return math.Max(math.Round(v), MinBet)
	case v <= 100:
		return nearest(niceAmounts, v)
	}

	band := naturalTiers[tier]
	rounded := math.Round(v/band.step) * band.step
	if g.src.Float64() < stepJitterProb {
		if g.src.Float64() < 0.5 {
			rounded -= band.step
		} else {
			rounded += band.step
		}
	}
	if rounded < band.min {
		// Первый кратный шагу не ниже границы тира: 7500 → 8000 для high.
		rounded = math.Ceil(band.min/band.step) * band.step
	}
	// Сверху тот же принцип: high не должен дотягивать до китового тира.
	return math.Min(rounded, math.Floor(band.max/band.step)*band.step)
}

func nearest(set []float64, v float64) float64 {
	best := set[0]
	for _, c := range set[1:] {
		if math.Abs(c-v) < math.Abs(best-v) {
			best = c
		}
	}
	return best
}

// Границы полос лестницы по значению ступени.
const (
	ladderLowMax   = 200.0
	ladderMidMax   = 1000.0
	ladderHighRung = 1000.0 // с этой ступени дрейф только на ±1
)

// ladderBet — ставка с лестницы. Ступени меньше MinBet не используются,
// если на лестнице есть хотя бы одна ступень не меньше MinBet.
func (g *Generator) ladderBet(ladder []float64, user string, recent bool) (float64, int) {
	if len(ladder) == 0 {
		ladder = catalog.DefaultLadder(catalog.LadderPragmatic)
	}

	lo := firstAtLeast(ladder, MinBet)
	if lo < 0 {
		// Вся лестница ниже минимума: берём верхнюю ступень и поднимаем до MinBet.
		idx := len(ladder) - 1
		return math.Max(ladder[idx], MinBet), idx
	}

	var idx int
	if h := g.state.user(user); recent && h != nil && h.lastIndex >= 0 {
		idx = g.driftIndex(ladder, clampInt(h.lastIndex, lo, len(ladder)-1), lo)
	} else {
		idx = g.freshIndex(ladder, lo)
	}
	return ladder[idx], idx
}

// freshIndex выбирает полосу 70/20/10 и равномерный индекс внутри неё.
// Пустая полоса уступает более низкой, затем всей допустимой лестнице.
func (g *Generator) freshIndex(ladder []float64, lo int) int {
	var bands [3][]int
	for i := lo; i < len(ladder); i++ {
		switch v := ladder[i]; {
		case v < ladderLowMax:
			bands[0] = append(bands[0], i)
		case v < ladderMidMax:
			bands[1] = append(bands[1], i)
		default:
			bands[2] = append(bands[2], i)
		}
	}

	roll := g.src.Float64()
	want := 0
	switch {
	case roll < 0.70:
		want = 0
	case roll < 0.90:
		want = 1
	default:
		want = 2
	}

	for b := want; b >= 0; b-- {
		if len(bands[b]) > 0 {
			return bands[b][g.src.IntN(len(bands[b]))]
		}
	}
	return lo + g.src.IntN(len(ladder)-lo)
}

// driftIndex сдвигает индекс игрока: 50% на месте, 30% на ±1,
// иначе ±2/±3 (на высоких ступенях только ±1).
func (g *Generator) driftIndex(ladder []float64, current, lo int) int {
	roll := g.src.Float64()
	step := 0
	switch {
	case roll < 0.5:
		step = 0
	case roll < 0.8 || ladder[current] >= ladderHighRung:
		step = 1
	default:
		step = randInt(g.src, 2, 3)
	}
	if step != 0 && g.src.Float64() < 0.5 {
		step = -step
	}
	return clampInt(current+step, lo, len(ladder)-1)
}

func firstAtLeast(ladder []float64, min float64) int {
	for i, v := range ladder {
		if v >= min {
			return i
		}
	}
	return -1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

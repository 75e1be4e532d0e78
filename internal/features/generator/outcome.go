// Package generator — outcome.go решает исход события: выигрыш/проигрыш и множитель.
//
// Тиры выигрыша: small 1.2–4x, medium 4–20x, large 20–50x/20–100x, mega 100x+.
// Mega закрыт кулдауном. Если заметного выигрыша (>= 5x) давно не было,
// следующий исход принудительно выигрышный в диапазоне 5–20x.
package generator

import (
	"math"

	"serotonyl.ru/casino-feed/internal/common"
)

// Type — тип транзакции.
type Type string

const (
	TypeWin  Type = "WIN"
	TypeLoss Type = "LOSS"
)

type winTier int

const (
	winNone winTier = iota
	winSmall
	winMedium
	winLarge
	winMega
	winForced
)

// bigBetThreshold — с этой ставки потолок large и mega ниже.
const bigBetThreshold = 1000.0

// Outcome — результат розыгрыша. Multiplier = 0 для проигрыша.
type Outcome struct {
	Type       Type
	Multiplier float64
	tier       winTier
}

// MultiplierString возвращает "12.5x" или "" для проигрыша.
func (o Outcome) MultiplierString() string {
	if o.Type != TypeWin {
		return ""
	}
	return common.FormatMultiplier(o.Multiplier)
}

// drawOutcome разыгрывает исход. Состояние не меняет.
func (g *Generator) drawOutcome(bet float64, forced bool) Outcome {
	if forced {
		// Вниз до десятых: 19.97 не должно превратиться в 20.0.
		m := math.Floor(uniform(g.src, 5, 20)*10) / 10
		return Outcome{Type: TypeWin, Multiplier: m, tier: winForced}
	}

	roll := g.src.Float64()
	switch {
	case roll < 0.5:
		return Outcome{Type: TypeLoss, tier: winNone}
	case roll < 0.85:
		return g.win(winSmall, uniform(g.src, 1.2, 4))
	case roll < 0.97:
		return g.win(winMedium, uniform(g.src, 4, 20))
	case roll < 0.995 || g.state.megaCooldown > 0:
		return g.win(winLarge, g.largeMultiplier(bet))
	default:
		if bet >= bigBetThreshold {
			return g.win(winMega, uniform(g.src, 100, 200))
		}
		return g.win(winMega, uniform(g.src, 100, 1000))
	}
}

func (g *Generator) largeMultiplier(bet float64) float64 {
	if bet >= bigBetThreshold {
		return uniform(g.src, 20, 50)
	}
	return uniform(g.src, 20, 100)
}

func (g *Generator) win(tier winTier, m float64) Outcome {
	return Outcome{Type: TypeWin, Multiplier: common.Round1(m), tier: tier}
}

// resolveOutcome разыгрывает исход с подавлением повторов (игра, ставка, множитель):
// совпадение в последних 60 событиях — всегда перерозыгрыш, в последних 100 — с шансом 40%.
// Не больше maxOutcomeAttempts попыток, после чего остаётся последний результат.
// Возвращает исход и число попыток.
func (g *Generator) resolveOutcome(game, amount string, bet float64, forced bool) (Outcome, int) {
	out := g.drawOutcome(bet, forced)
	attempts := 1
	// Перерозыгрыш остаётся в принудительной полосе, иначе пропадает гарантия заметного выигрыша.
	for out.Type == TypeWin && attempts < maxOutcomeAttempts && g.isRecentCombo(combo{game, amount, out.MultiplierString()}) {
		out = g.drawOutcome(bet, forced)
		attempts++
	}

	if out.tier == winMega {
		g.state.armMega(megaCooldownTicks)
	}
	return out, attempts
}

func (g *Generator) isRecentCombo(c combo) bool {
	pos := g.state.combos.Index(c)
	switch {
	case pos < 0:
		return false
	case pos < comboAlwaysRetryWindow:
		return true
	default:
		return g.src.Float64() < comboRetryChance
	}
}

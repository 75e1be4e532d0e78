// Package generator — selection.go выбирает провайдера и игру.
//
// Провайдер: взвешенный выбор, серия из 4 одинаковых провайдеров прерывается.
// Игра: вес 1.0, штраф 0.7 за появление в последних 20, суточный джиттер
// и жёсткий запрет на третий повтор подряд.
package generator

import (
	"serotonyl.ru/casino-feed/internal/features/catalog"
)

const recentGamePenalty = 0.7

// pickProvider выбирает провайдера по весам снимка.
func (g *Generator) pickProvider(snap *catalog.Snapshot) catalog.Provider {
	excluded, streak := g.state.recentProviders.SameLast(providerStreakLimit)

	var candidates []catalog.Provider
	var weights []float64
	for _, pw := range snap.Weights {
		if pw.Weight <= 0 || (streak && pw.Provider == excluded) {
			continue
		}
		candidates = append(candidates, pw.Provider)
		weights = append(weights, float64(pw.Weight))
	}

	// Исключение опустошило выбор — берём всех без фильтра.
	if len(candidates) == 0 {
		for _, pw := range snap.Weights {
			candidates = append(candidates, pw.Provider)
			weights = append(weights, float64(pw.Weight))
		}
	}
	if len(candidates) == 0 {
		// Весов нет вовсе: провайдер первой активной игры.
		return snap.Games[0].Provider
	}

	return candidates[weightedPick(g.src, weights)]
}

// gameWeights считает веса игр пула для текущего выбора.
func (g *Generator) gameWeights(pool []catalog.GameDefinition, day string) []float64 {
	last, tripleRisk := g.state.recentGames.SameLast(2)

	weights := make([]float64, len(pool))
	for i, game := range pool {
		w := 1.0
		if g.state.gameHistory.Contains(game.GameID) {
			w *= recentGamePenalty
		}
		w *= dayJitter(day, len([]rune(game.Name)), g.state.events)
		if tripleRisk && game.GameID == last {
			w = 0
		}
		weights[i] = w
	}
	return weights
}

// pickGame выбирает игру провайдера и записывает выбор в историю.
func (g *Generator) pickGame(snap *catalog.Snapshot, provider catalog.Provider, day string) catalog.GameDefinition {
	pool := snap.ByProvider[provider]
	if len(pool) == 0 {
		pool = snap.Games[:1]
	}

	game := pool[weightedPick(g.src, g.gameWeights(pool, day))]

	g.state.recentProviders.Push(game.Provider)
	g.state.recentGames.Push(game.GameID)
	g.state.gameHistory.Push(game.GameID)
	g.state.events++

	return game
}

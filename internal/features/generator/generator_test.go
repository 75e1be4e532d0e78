package generator

import (
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/catalog"
)

var (
	amountRe     = regexp.MustCompile(`^\d+\.\d{2}$`)
	multiplierRe = regexp.MustCompile(`^\d+\.\dx$`)
)

func parseMultiplier(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
	require.NoError(t, err)
	return v
}

func TestTick_CacheNotInitialized(t *testing.T) {
	g := New(staticSnapshot{err: common.ErrCacheNotInitialized}, WithSource(NewSource(1)))
	g.state.whaleCooldown = 3
	g.state.megaCooldown = 3
	g.state.sinceVisibleWin = 3

	tx, err := g.Tick()
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, common.ErrCacheNotInitialized)

	// без конфигурации счётчики не трогаются
	assert.Equal(t, 3, g.state.whaleCooldown)
	assert.Equal(t, 3, g.state.megaCooldown)
	assert.Equal(t, 3, g.state.sinceVisibleWin)
}

func TestTick_NoActiveGamesStillDecays(t *testing.T) {
	snap := catalog.BuildSnapshot(nil, nil, fixedNow)
	g := newTestGenerator(snap, NewSource(1))
	g.state.armWhale(3)
	g.state.armMega(3)

	for range 2 {
		tx, err := g.Tick()
		assert.Nil(t, tx)
		assert.True(t, errors.Is(err, common.ErrNoActiveGames))
	}

	assert.Equal(t, 2, g.state.whaleCooldown)
	assert.Equal(t, 2, g.state.megaCooldown)
	assert.Equal(t, 2, g.state.sinceVisibleWin)
}

// Свойства на длинном прогоне по встроенному каталогу.
func TestTick_Properties(t *testing.T) {
	snap := defaultSnapshot(t)
	g := newTestGenerator(snap, NewSource(42))

	var prevGames []string
	sinceVisible := 0

	for i := 0; i < 5000; i++ {
		tx, err := g.Tick()
		require.NoError(t, err)
		require.NotNil(t, tx)

		// сумма >= 5 и ровно два знака
		require.Regexp(t, amountRe, tx.Amount)
		amount, err := strconv.ParseFloat(tx.Amount, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, amount, MinBet)

		assert.Equal(t, "₺", tx.Currency)
		assert.True(t, tx.IsSimulation)
		assert.NotEmpty(t, tx.Username)

		// LOSS без множителя, WIN с множителем "N.Nx"
		var m float64
		switch tx.Type {
		case TypeLoss:
			require.Nil(t, tx.Multiplier)
		case TypeWin:
			require.NotNil(t, tx.Multiplier)
			require.Regexp(t, multiplierRe, *tx.Multiplier)
			m = parseMultiplier(t, *tx.Multiplier)
			require.Greater(t, m, 0.0)
		default:
			t.Fatalf("неизвестный тип %q", tx.Type)
		}

		// ставка лестничной игры — ступень её лестницы
		game, ok := gameByName(snap, tx.Game)
		require.True(t, ok, tx.Game)
		if game.IsLadderGame() {
			require.Contains(t, snap.LadderFor(game), amount, "игра %s", tx.Game)
		}

		// одна и та же игра не три раза подряд
		if n := len(prevGames); n >= 2 {
			require.False(t, prevGames[n-1] == tx.Game && prevGames[n-2] == tx.Game, "тройной повтор на шаге %d", i)
		}
		prevGames = append(prevGames, tx.Game)

		// после 25 тиков без заметного выигрыша — принудительный выигрыш 5–20x
		if sinceVisible >= visibleWinMaxTicks {
			require.Equal(t, TypeWin, tx.Type, "шаг %d", i)
			require.GreaterOrEqual(t, m, 5.0)
			require.Less(t, m, 20.0)
		}
		if tx.Type == TypeWin && m >= visibleWinMultiplier {
			sinceVisible = 0
		} else {
			sinceVisible++
		}
	}
}

func TestTick_ForcedWinAtThreshold(t *testing.T) {
	snap := defaultSnapshot(t)
	g := newTestGenerator(snap, NewSource(3))

	day := common.DayKey(fixedNow, g.loc)
	threshold := visibleWinThreshold(day, g.state.winCycle)
	// следующий тик увеличит счётчик до threshold+1
	g.state.sinceVisibleWin = threshold

	tx, err := g.Tick()
	require.NoError(t, err)
	require.Equal(t, TypeWin, tx.Type)
	m := parseMultiplier(t, *tx.Multiplier)
	assert.GreaterOrEqual(t, m, 5.0)
	assert.Less(t, m, 20.0)

	assert.Zero(t, g.state.sinceVisibleWin, "заметный выигрыш сбрасывает счётчик")
	assert.Equal(t, 1, g.state.winCycle)
}

func TestTick_ScenarioSeedLadder(t *testing.T) {
	ladder := []float64{5, 10, 25, 50, 100, 250, 500, 1000}
	snap := catalog.BuildSnapshot(
		[]catalog.GameConfig{{GameID: "olympus", Name: "Gates of Olympus", Provider: "pragmatic", LadderType: "pragmatic", IsActive: true}},
		map[string]string{"ladder_pragmatic": catalog.FormatLadder(ladder)},
		fixedNow,
	)
	g := newTestGenerator(snap, NewSource(2024))

	for range 1000 {
		tx, err := g.Tick()
		require.NoError(t, err)
		amount, err := strconv.ParseFloat(tx.Amount, 64)
		require.NoError(t, err)
		require.True(t, slices.Contains(ladder, amount), "ставка %s не на лестнице", tx.Amount)
	}
}

func TestTick_ScenarioSingleWeightedProvider(t *testing.T) {
	games := []catalog.GameConfig{
		{GameID: "a1", Name: "A One", Provider: "pragmatic", LadderType: "default", IsActive: true},
		{GameID: "a2", Name: "A Two", Provider: "pragmatic", LadderType: "default", IsActive: true},
		{GameID: "a3", Name: "A Three", Provider: "pragmatic", LadderType: "default", IsActive: true},
	}
	settings := map[string]string{
		"provider_weight_pragmatic": "100",
		"provider_weight_playngo":   "0",
		"provider_weight_netent":    "0",
		"provider_weight_other":     "0",
	}
	snap := catalog.BuildSnapshot(games, settings, fixedNow)
	g := newTestGenerator(snap, NewSource(9))

	for i := 0; i < 500; i++ {
		require.Equal(t, catalog.ProviderPragmatic, g.pickProvider(snap), "шаг %d", i)
		g.pickGame(snap, catalog.ProviderPragmatic, "2026-10-19")
	}
}

func TestPickProvider_ZeroWeightProvidersWithGames(t *testing.T) {
	games := []catalog.GameConfig{
		{GameID: "a", Name: "A", Provider: "pragmatic", IsActive: true},
		{GameID: "b", Name: "B", Provider: "netent", IsActive: true},
	}
	snap := catalog.BuildSnapshot(games, map[string]string{"provider_weight_netent": "0"}, fixedNow)
	g := newTestGenerator(snap, NewSource(5))

	// даже когда серия из pragmatic исключает его, провайдер с весом 0 не выбирается
	for range 4 {
		g.state.recentProviders.Push(catalog.ProviderPragmatic)
	}
	for range 100 {
		assert.Equal(t, catalog.ProviderPragmatic, g.pickProvider(snap))
	}
}

func TestPickProvider_BreaksStreak(t *testing.T) {
	games := []catalog.GameConfig{
		{GameID: "a", Name: "A", Provider: "pragmatic", IsActive: true},
		{GameID: "b", Name: "B", Provider: "playngo", IsActive: true},
		{GameID: "c", Name: "C", Provider: "netent", IsActive: true},
	}
	snap := catalog.BuildSnapshot(games, map[string]string{"provider_weight_pragmatic": "100"}, fixedNow)
	g := newTestGenerator(snap, NewSource(11))

	for range 4 {
		g.state.recentProviders.Push(catalog.ProviderPragmatic)
	}
	for range 200 {
		assert.NotEqual(t, catalog.ProviderPragmatic, g.pickProvider(snap))
	}

	// серия из трёх ещё не исключает
	g.state.recentProviders.Push(catalog.ProviderNetent)
	seen := false
	for range 200 {
		if g.pickProvider(snap) == catalog.ProviderPragmatic {
			seen = true
		}
	}
	assert.True(t, seen)
}

func TestPickGame_NoTripleRepeat(t *testing.T) {
	games := []catalog.GameConfig{
		{GameID: "x", Name: "X", Provider: "netent", IsActive: true},
		{GameID: "y", Name: "Y", Provider: "netent", IsActive: true},
	}
	snap := catalog.BuildSnapshot(games, nil, fixedNow)
	g := newTestGenerator(snap, NewSource(77))

	var picks []string
	for range 2000 {
		picks = append(picks, g.pickGame(snap, catalog.ProviderNetent, "2026-10-19").GameID)
	}
	for i := 2; i < len(picks); i++ {
		require.False(t, picks[i] == picks[i-1] && picks[i-1] == picks[i-2], "тройной повтор на шаге %d", i)
	}
	assert.Equal(t, uint64(2000), g.state.events)
}

func TestPickGame_EmptyProviderPoolFallsBackToFirstGame(t *testing.T) {
	games := []catalog.GameConfig{
		{GameID: "first", Name: "First", Provider: "playngo", IsActive: true},
		{GameID: "second", Name: "Second", Provider: "netent", IsActive: true},
	}
	snap := catalog.BuildSnapshot(games, nil, fixedNow)
	g := newTestGenerator(snap, NewSource(1))

	assert.Equal(t, "first", g.pickGame(snap, catalog.ProviderOther, "2026-10-19").GameID)
}

func TestGameWeights(t *testing.T) {
	pool := []catalog.GameDefinition{
		{GameID: "x", Name: "Xx"},
		{GameID: "y", Name: "Yy"},
	}
	g := New(staticSnapshot{}, WithSource(NewSource(1)))
	g.state.gameHistory.Push("y")
	g.state.recentGames.Push("x")
	g.state.recentGames.Push("x")

	w := g.gameWeights(pool, "2026-10-19")
	assert.Zero(t, w[0], "третий повтор подряд запрещён")

	j := dayJitter("2026-10-19", 2, 0)
	assert.InDelta(t, 0.7*j, w[1], 1e-9, "штраф за недавнее появление")
}

func TestNaturalBet_WhaleCooldown(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(constSource(0.999)))

	// первый китовый бросок проходит и включает кулдаун
	bet := g.naturalBet("whale")
	assert.GreaterOrEqual(t, bet, 25000.0)
	cooldown := g.state.whaleCooldown
	require.GreaterOrEqual(t, cooldown, whaleCooldownMin+1)

	// следующие тики китовый тир откатывается в mid
	for i := 0; i < cooldown-1; i++ {
		g.state.decay()
		bet := g.naturalBet("fresh" + strconv.Itoa(i))
		assert.GreaterOrEqual(t, bet, 1500.0, "тик %d", i)
		assert.LessOrEqual(t, bet, 7500.0, "тик %d", i)
	}

	g.state.decay()
	assert.Zero(t, g.state.whaleCooldown)
	assert.GreaterOrEqual(t, g.naturalBet("whale-again"), 25000.0)
}

func TestNaturalBet_WhaleBlockedForAtLeastMinCooldown(t *testing.T) {
	src := NewSource(99)
	g := New(staticSnapshot{}, WithSource(src))

	lastWhale := -1
	for tick := 0; tick < 20000; tick++ {
		g.state.decay()
		before := g.state.whaleCooldown
		g.naturalBet("u" + strconv.Itoa(tick))
		if g.state.whaleCooldown > before {
			if lastWhale >= 0 {
				require.Greater(t, tick-lastWhale, whaleCooldownMin, "киты на тиках %d и %d", lastWhale, tick)
			}
			lastWhale = tick
		}
	}
	require.GreaterOrEqual(t, lastWhale, 0, "за 20000 тиков должен был случиться хотя бы один кит")
}

func TestRoundNatural(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(5)))

	for range 2000 {
		for tier := tierMicro; tier <= tierWhale; tier++ {
			band := naturalTiers[tier]
			v := uniform(g.src, band.min, band.max)
			r := g.roundNatural(v, tier)

			switch {
			case v < 20:
				assert.Equal(t, r, float64(int(r)))
				assert.GreaterOrEqual(t, r, MinBet)
			case v <= 100:
				assert.Contains(t, niceAmounts, r)
			default:
				assert.Zero(t, int(r)%int(band.step), "%v → %v", v, r)
				assert.GreaterOrEqual(t, r, band.min)
			}
		}
	}
}

func TestRoundNatural_StaysInsideBand(t *testing.T) {
	tests := []struct {
		name string
		tier betTier
	}{
		{"micro", tierMicro},
		{"small", tierSmall},
		{"mid", tierMid},
		{"high", tierHigh},
		{"whale", tierWhale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(staticSnapshot{}, WithSource(NewSource(17)))
			band := naturalTiers[tt.tier]
			for range 20000 {
				r := g.roundNatural(uniform(g.src, band.min, band.max), tt.tier)
				require.GreaterOrEqual(t, r, MinBet)
				require.LessOrEqual(t, r, band.max)
				if r > 100 {
					require.GreaterOrEqual(t, r, band.min)
				}
			}
		})
	}
}

func TestRoundNatural_TopOfBand(t *testing.T) {
	// 0.1 включает сдвиг на шаг, 0.9 выбирает сдвиг вверх
	up := func() Source { return &seqSource{floats: []float64{0.1, 0.9}} }

	g := New(staticSnapshot{}, WithSource(up()))
	assert.Equal(t, 25000.0, g.roundNatural(24900, tierHigh))

	g = New(staticSnapshot{}, WithSource(up()))
	assert.Equal(t, 250.0, g.roundNatural(249, tierMicro))

	g = New(staticSnapshot{}, WithSource(up()))
	assert.Equal(t, 7500.0, g.roundNatural(7450, tierMid))
}

func TestNaturalBet_NoWhaleSizedBetsDuringCooldown(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(23)))
	g.state.whaleCooldown = 10

	for i := range 50000 {
		bet := g.naturalBet("u" + strconv.Itoa(i))
		require.LessOrEqual(t, bet, 25000.0, "тик %d", i)
	}
}

func TestNaturalBet_BlendsWithLastBet(t *testing.T) {
	// бросок 0 → micro, 5 + 0*245 = 5; дрейф 0.7
	g := New(staticSnapshot{}, WithSource(constSource(0)))
	g.state.rememberBet("alice", 1000, -1)

	// 0.4*1000*0.7 + 0.6*5 = 283
	assert.Equal(t, 283.0, g.naturalBet("alice"))
	assert.Equal(t, 5.0, g.naturalBet("bob"))
}

func TestLadderBet_SkipsRungsBelowMinimum(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(8)))
	ladder := catalog.DefaultLadder(catalog.LadderPlayngo) // 1, 2, 3, 5, ...

	for i := range 1000 {
		bet, idx := g.ladderBet(ladder, "u"+strconv.Itoa(i), false)
		assert.GreaterOrEqual(t, bet, MinBet)
		assert.Equal(t, ladder[idx], bet)
	}
}

func TestLadderBet_AllRungsBelowMinimum(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(8)))
	bet, idx := g.ladderBet([]float64{1, 2, 3}, "u", false)
	assert.Equal(t, MinBet, bet)
	assert.Equal(t, 2, idx)
}

func TestLadderBet_Bands(t *testing.T) {
	ladder := []float64{5, 10, 25, 50, 100, 250, 500, 1000}

	// 0.95 → верхняя полоса (>= 1000)
	g := New(staticSnapshot{}, WithSource(constSource(0.95)))
	bet, _ := g.ladderBet(ladder, "u", false)
	assert.Equal(t, 1000.0, bet)

	// 0.8 → средняя полоса (200–1000)
	g = New(staticSnapshot{}, WithSource(&seqSource{floats: []float64{0.8}, ints: []int{1}}))
	bet, _ = g.ladderBet(ladder, "u", false)
	assert.Equal(t, 500.0, bet)

	// верхней полосы нет — откат на среднюю
	g = New(staticSnapshot{}, WithSource(constSource(0.95)))
	bet, _ = g.ladderBet([]float64{5, 10, 250, 500}, "u", false)
	assert.Equal(t, 250.0, bet)
}

func TestLadderBet_DriftForRecentUser(t *testing.T) {
	ladder := catalog.DefaultLadder(catalog.LadderPragmatic)
	g := New(staticSnapshot{}, WithSource(NewSource(31)))
	start := slices.Index(ladder, 100)
	g.state.rememberBet("alice", 100, start)

	for range 500 {
		_, idx := g.ladderBet(ladder, "alice", true)
		assert.LessOrEqual(t, absInt(idx-start), 3)
	}

	// на высоких ступенях шаг не больше 1
	high := slices.Index(ladder, 1400)
	g.state.rememberBet("bob", 1400, high)
	for range 500 {
		_, idx := g.ladderBet(ladder, "bob", true)
		assert.LessOrEqual(t, absInt(idx-high), 1)
	}
}

func TestLadderBet_NoDriftWhenNotRecent(t *testing.T) {
	ladder := []float64{5, 10, 25, 50, 100, 250, 500, 1000}
	// 0.95 → верхняя полоса; дрейф от индекса 0 дал бы максимум индекс 3
	g := New(staticSnapshot{}, WithSource(constSource(0.95)))
	g.state.rememberBet("alice", 5, 0)

	bet, idx := g.ladderBet(ladder, "alice", false)
	assert.Equal(t, 1000.0, bet)
	assert.Equal(t, 7, idx)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestDrawOutcome_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		roll     float64
		bet      float64
		wantType Type
		min, max float64
	}{
		{"loss", 0.49, 100, TypeLoss, 0, 0},
		{"small", 0.6, 100, TypeWin, 1.2, 4},
		{"medium", 0.9, 100, TypeWin, 4, 20},
		{"large small bet", 0.98, 100, TypeWin, 20, 100},
		{"large big bet", 0.98, 5000, TypeWin, 20, 50},
		{"mega small bet", 0.999, 100, TypeWin, 100, 1000},
		{"mega big bet", 0.999, 5000, TypeWin, 100, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(staticSnapshot{}, WithSource(constSource(tt.roll)))
			out := g.drawOutcome(tt.bet, false)
			assert.Equal(t, tt.wantType, out.Type)
			if tt.wantType == TypeWin {
				assert.GreaterOrEqual(t, out.Multiplier, tt.min)
				assert.LessOrEqual(t, out.Multiplier, tt.max)
			} else {
				assert.Empty(t, out.MultiplierString())
			}
		})
	}
}

func TestResolveOutcome_MegaCooldown(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(constSource(0.999)))

	out, _ := g.resolveOutcome("olympus", "100.00", 100, false)
	require.Equal(t, winMega, out.tier)
	assert.Equal(t, megaCooldownTicks+1, g.state.megaCooldown)

	// пока кулдаун активен, mega откатывается в large
	g.state.decay()
	out, _ = g.resolveOutcome("olympus", "100.00", 100, false)
	assert.Equal(t, winLarge, out.tier)
	assert.LessOrEqual(t, out.Multiplier, 100.0)
}

func TestResolveOutcome_ForcedBand(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(4)))
	for range 1000 {
		out, _ := g.resolveOutcome("olympus", "50.00", 50, true)
		require.Equal(t, TypeWin, out.Type)
		require.GreaterOrEqual(t, out.Multiplier, 5.0)
		require.Less(t, out.Multiplier, 20.0)
		require.Regexp(t, multiplierRe, out.MultiplierString())
	}

	// даже бросок у самой границы не даёт 20.0x
	g = New(staticSnapshot{}, WithSource(constSource(0.9999)))
	out := g.drawOutcome(50, true)
	assert.Equal(t, "19.9x", out.MultiplierString())
}

func TestResolveOutcome_ForcedRetryStaysInForcedBand(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(constSource(0.6)))

	first, _ := g.resolveOutcome("olympus", "50.00", 50, true)
	g.state.combos.Push(combo{game: "olympus", amount: "50.00", multiplier: first.MultiplierString()})

	out, attempts := g.resolveOutcome("olympus", "50.00", 50, true)
	assert.Equal(t, maxOutcomeAttempts, attempts)
	assert.Equal(t, TypeWin, out.Type, "перерозыгрыш принудительного тика не даёт проигрыш")
	assert.GreaterOrEqual(t, out.Multiplier, 5.0)
	assert.Less(t, out.Multiplier, 20.0)
}

func TestResolveOutcome_RetriesRecentDuplicate(t *testing.T) {
	// бросок 0.6 всегда даёт small 1.2 + 0.6*2.8 = 2.88 → "2.9x"
	g := New(staticSnapshot{}, WithSource(constSource(0.6)))

	out, attempts := g.resolveOutcome("olympus", "100.00", 100, false)
	assert.Equal(t, "2.9x", out.MultiplierString())
	assert.Equal(t, 1, attempts, "новой комбинации перерозыгрыш не нужен")

	g.state.combos.Push(combo{game: "olympus", amount: "100.00", multiplier: "2.9x"})
	out, attempts = g.resolveOutcome("olympus", "100.00", 100, false)
	assert.Equal(t, maxOutcomeAttempts, attempts, "свежий повтор перерыгрывается до упора")
	assert.Equal(t, "2.9x", out.MultiplierString(), "после трёх попыток остаётся последний результат")

	// другая игра — не повтор
	_, attempts = g.resolveOutcome("sweet", "100.00", 100, false)
	assert.Equal(t, 1, attempts)
}

func TestResolveOutcome_OldDuplicateRetriedByChance(t *testing.T) {
	// Float64 по кругу: 0.6, 0.6 (исход 2.9x), 0.3 (перерозыгрыш), 0.6, 0.6, 0.9 (шанс не сработал)
	g := New(staticSnapshot{}, WithSource(&seqSource{floats: []float64{0.6, 0.6, 0.3, 0.6, 0.6, 0.9}}))
	g.state.combos.Push(combo{game: "olympus", amount: "100.00", multiplier: "2.9x"})
	for range comboAlwaysRetryWindow {
		g.state.combos.Push(combo{game: "filler", amount: "5.00"})
	}

	_, attempts := g.resolveOutcome("olympus", "100.00", 100, false)
	assert.Equal(t, 2, attempts)
}

func TestResolveOutcome_LossNeverRetried(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(constSource(0.1)))
	g.state.combos.Push(combo{game: "olympus", amount: "100.00"})

	out, attempts := g.resolveOutcome("olympus", "100.00", 100, false)
	assert.Equal(t, TypeLoss, out.Type)
	assert.Equal(t, 1, attempts)
}

func TestPickUser(t *testing.T) {
	g := New(staticSnapshot{}, WithSource(NewSource(12)))

	prev := ""
	returning := 0
	for i := 0; i < 3000; i++ {
		u := g.pickUser()
		require.NotEmpty(t, u)
		require.NotEqual(t, prev, u, "шаг %d: тот же игрок подряд", i)
		if g.state.recentUsers.Contains(u) {
			returning++
		}
		g.state.recentUsers.Push(u)
		prev = u
	}
	// примерно четверть — вернувшиеся игроки
	assert.InDelta(t, 750, returning, 150)
}

func TestMaskHandle(t *testing.T) {
	assert.Equal(t, "Lu***77", maskHandle("LuckyWolf77"))
	assert.Equal(t, "AceFx", maskHandle("AceFx"))
}

func TestStatus(t *testing.T) {
	snap := defaultSnapshot(t)
	g := newTestGenerator(snap, NewSource(1))
	for range 10 {
		_, err := g.Tick()
		require.NoError(t, err)
	}

	st := g.Status()
	assert.Equal(t, uint64(10), st.Events)
	assert.GreaterOrEqual(t, st.VisibleWinTrigger, visibleWinMinTicks)
	assert.LessOrEqual(t, st.VisibleWinTrigger, visibleWinMaxTicks)
	assert.Positive(t, st.TrackedUsers)
}

func TestRememberBet_BoundsTrackedUsers(t *testing.T) {
	s := NewState()
	for i := 0; i < maxTrackedUsers*3; i++ {
		name := "user" + strconv.Itoa(i)
		s.rememberBet(name, 10, -1)
		s.recentUsers.Push(name)
	}
	assert.LessOrEqual(t, len(s.users), maxTrackedUsers)
}

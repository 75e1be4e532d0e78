// Package generator — generator.go собирает движки в один тик:
// decay → игрок → провайдер и игра → ставка → исход → запись истории.
//
// Весь тик выполняется под одним мьютексом: окна недавних событий
// и порядок уменьшения кулдаунов — часть наблюдаемого поведения.
package generator

import (
	"sync"
	"time"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/catalog"
)

// Transaction — одно синтетическое событие ленты.
type Transaction struct {
	Username     string    `json:"username"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Type         Type      `json:"type"`
	Game         string    `json:"game"`
	Multiplier   *string   `json:"multiplier,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	IsSimulation bool      `json:"isSimulation"`
}

// SnapshotSource — откуда генератор берёт конфигурацию (catalog.Cache).
type SnapshotSource interface {
	Snapshot() (*catalog.Snapshot, error)
}

// Option настраивает генератор.
type Option func(*Generator)

// WithSource подменяет источник случайности.
func WithSource(src Source) Option {
	return func(g *Generator) { g.src = src }
}

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithCurrency задаёт символ валюты.
func WithCurrency(currency string) Option {
	return func(g *Generator) { g.currency = currency }
}

// WithLocation задаёт часовой пояс, по которому меняются сутки джиттера.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// Generator производит по одной транзакции за тик.
type Generator struct {
	mu       sync.Mutex
	snapshot SnapshotSource
	src      Source
	now      func() time.Time
	currency string
	loc      *time.Location
	state    *State
}

// New создаёт генератор с пустым состоянием.
func New(snapshot SnapshotSource, opts ...Option) *Generator {
	g := &Generator{
		snapshot: snapshot,
		src:      DefaultSource(),
		now:      time.Now,
		currency: "₺",
		loc:      time.UTC,
		state:    NewState(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tick выполняет один цикл генерации.
//
// Кеш не инициализирован — common.ErrCacheNotInitialized, состояние не трогается.
// Активных игр нет — счётчики всё равно уменьшаются, возвращается common.ErrNoActiveGames.
func (g *Generator) Tick() (*Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap, err := g.snapshot.Snapshot()
	if err != nil {
		return nil, err
	}

	g.state.decay()

	if len(snap.Games) == 0 {
		return nil, common.ErrNoActiveGames
	}

	now := g.now()
	day := common.DayKey(now, g.loc)

	user := g.pickUser()
	recent := g.state.recentUsers.ContainsLast(user, userRecencyWindow)

	provider := g.pickProvider(snap)
	game := g.pickGame(snap, provider, day)

	bet, index := g.sizeBet(snap, game, user, recent)
	amount := common.FormatAmount(bet)

	forced := g.state.sinceVisibleWin > visibleWinThreshold(day, g.state.winCycle)
	outcome, _ := g.resolveOutcome(game.GameID, amount, bet, forced)

	g.record(user, game, bet, index, amount, outcome)

	tx := &Transaction{
		Username:     user,
		Amount:       amount,
		Currency:     g.currency,
		Type:         outcome.Type,
		Game:         game.Name,
		Timestamp:    now,
		IsSimulation: true,
	}
	if outcome.Type == TypeWin {
		m := outcome.MultiplierString()
		tx.Multiplier = &m
	}
	return tx, nil
}

// record обновляет историю после события.
func (g *Generator) record(user string, game catalog.GameDefinition, bet float64, index int, amount string, out Outcome) {
	s := g.state
	s.rememberBet(user, bet, index)
	s.recentUsers.Push(user)
	s.combos.Push(combo{game: game.GameID, amount: amount, multiplier: out.MultiplierString()})

	if out.Type == TypeWin && out.Multiplier >= visibleWinMultiplier {
		s.sinceVisibleWin = 0
		s.winCycle++
	}
}

// Status возвращает срез состояния для админки.
func (g *Generator) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.state
	return Status{
		WhaleCooldown:     s.whaleCooldown,
		MegaCooldown:      s.megaCooldown,
		SinceVisibleWin:   s.sinceVisibleWin,
		VisibleWinTrigger: visibleWinThreshold(common.DayKey(g.now(), g.loc), s.winCycle),
		Events:            s.events,
		TrackedUsers:      len(s.users),
	}
}

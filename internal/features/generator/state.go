// Package generator — state.go описывает изменяемое состояние генератора:
// кулдауны, счётчик темпа, окна недавних событий и историю ставок игроков.
//
// Состояние живёт только в памяти и теряется при рестарте.
// Меняется только внутри Generator.Tick под мьютексом генератора.
package generator

import "serotonyl.ru/casino-feed/internal/features/catalog"

const (
	recentUsersSize     = 10
	recentPicksSize     = 5
	gameHistorySize     = 20
	comboHistorySize    = 100
	userRecencyWindow   = 6 // "игрок был недавно" для дрейфа по лестнице
	providerStreakLimit = 4

	comboAlwaysRetryWindow = 60
	comboRetryChance       = 0.4
	maxOutcomeAttempts     = 3

	whaleCooldownMin  = 20
	whaleCooldownMax  = 40
	megaCooldownTicks = 80

	visibleWinMultiplier = 5.0
	visibleWinMinTicks   = 15
	visibleWinMaxTicks   = 25

	maxTrackedUsers = 512
)

// userHistory — последняя ставка игрока и, для лестничных игр, индекс ступени.
type userHistory struct {
	lastBet   float64
	lastIndex int // -1, если игрок ещё не ставил по лестнице
}

// combo — тройка (игра, ставка, множитель) для подавления повторов.
type combo struct {
	game       string
	amount     string
	multiplier string
}

// State — всё, что генератор помнит между тиками.
type State struct {
	whaleCooldown   int
	megaCooldown    int
	sinceVisibleWin int
	winCycle        int
	events          uint64

	recentUsers     *ring[string]
	recentProviders *ring[catalog.Provider]
	recentGames     *ring[string]
	gameHistory     *ring[string]
	combos          *ring[combo]

	users map[string]*userHistory
}

// NewState создаёт пустое состояние.
func NewState() *State {
	return &State{
		recentUsers:     newRing[string](recentUsersSize),
		recentProviders: newRing[catalog.Provider](recentPicksSize),
		recentGames:     newRing[string](recentPicksSize),
		gameHistory:     newRing[string](gameHistorySize),
		combos:          newRing[combo](comboHistorySize),
		users:           make(map[string]*userHistory),
	}
}

// decay — первая фаза тика: кулдауны уменьшаются, счётчик темпа растёт.
// Выполняется каждый тик независимо от результата генерации.
func (s *State) decay() {
	if s.whaleCooldown > 0 {
		s.whaleCooldown--
	}
	if s.megaCooldown > 0 {
		s.megaCooldown--
	}
	s.sinceVisibleWin++
}

// armWhale включает кулдаун китовой ставки.
// +1: следующий тик начнётся с decay, а блокироваться должны все n следующих тиков.
func (s *State) armWhale(n int) {
	s.whaleCooldown = n + 1
}

func (s *State) armMega(n int) {
	s.megaCooldown = n + 1
}

// user возвращает историю игрока (nil, если её нет).
func (s *State) user(name string) *userHistory {
	return s.users[name]
}

// rememberBet сохраняет ставку игрока. index < 0 — ставка не по лестнице.
func (s *State) rememberBet(name string, bet float64, index int) {
	h, ok := s.users[name]
	if !ok {
		if len(s.users) >= maxTrackedUsers {
			s.forgetStaleUsers()
		}
		h = &userHistory{lastIndex: -1}
		s.users[name] = h
	}
	h.lastBet = bet
	if index >= 0 {
		h.lastIndex = index
	}
}

// forgetStaleUsers удаляет историю игроков, которых нет в окне недавних.
// Вернуться в ленту может только игрок из этого окна, остальные не нужны.
func (s *State) forgetStaleUsers() {
	for name := range s.users {
		if !s.recentUsers.Contains(name) {
			delete(s.users, name)
		}
	}
}

// Status — срез состояния для админки.
type Status struct {
	WhaleCooldown     int    `json:"whaleCooldown"`
	MegaCooldown      int    `json:"megaCooldown"`
	SinceVisibleWin   int    `json:"sinceVisibleWin"`
	VisibleWinTrigger int    `json:"visibleWinThreshold"`
	Events            uint64 `json:"events"`
	TrackedUsers      int    `json:"trackedUsers"`
}

// Package catalog — cache.go держит в памяти снимок активной конфигурации:
// активные игры, игры по провайдерам, веса провайдеров и лестницы ставок.
//
// Генератор читает только снимок, в БД на каждом тике не ходит.
// Снимок неизменяем: Refresh собирает новый и атомарно подменяет указатель,
// поэтому тик всегда видит одну согласованную версию.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
)

// Веса провайдеров по умолчанию, если в feed_settings ничего нет.
var defaultWeights = map[Provider]int{
	ProviderPragmatic: 70,
	ProviderPlayngo:   15,
	ProviderNetent:    8,
	ProviderOther:     7,
}

// DefaultWeight возвращает вес провайдера по умолчанию.
func DefaultWeight(p Provider) int {
	return defaultWeights[p]
}

// Snapshot — неизменяемая версия конфигурации ленты.
type Snapshot struct {
	Games       []GameDefinition
	ByProvider  map[Provider][]GameDefinition
	Weights     []ProviderWeight
	Ladders     map[LadderType][]float64
	Params      map[string]string
	RefreshedAt time.Time
}

// LadderFor возвращает лестницу ставок игры.
// Кастомная лестница важнее типа; неизвестный тип или "default"
// сводятся к лестнице семейства провайдера.
func (s *Snapshot) LadderFor(g GameDefinition) []float64 {
	if len(g.CustomLadder) > 0 {
		return g.CustomLadder
	}
	family := g.LadderType
	switch family {
	case LadderPragmatic, LadderPlayngo, LadderNetent, LadderHacksaw:
	default:
		family = ProviderLadderFamily(g.Provider)
	}
	if l := s.Ladders[family]; len(l) > 0 {
		return l
	}
	return DefaultLadder(family)
}

// Loader — источник данных для снимка. В проде это Repository.
type Loader interface {
	ListGames(ctx context.Context) ([]GameConfig, error)
	ListSettings(ctx context.Context) (map[string]string, error)
}

// Cache хранит текущий снимок конфигурации.
type Cache struct {
	loader Loader
	now    func() time.Time

	refreshMu sync.Mutex // сериализует Refresh
	mu        sync.RWMutex
	snap      *Snapshot
}

// NewCache создаёт пустой кеш. До первого Refresh Snapshot возвращает ошибку.
func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader, now: time.Now}
}

// Refresh перечитывает конфигурацию и подменяет снимок.
// При ошибке загрузки старый снимок остаётся в силе.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	games, err := c.loader.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки игр: %w", err)
	}
	settings, err := c.loader.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки настроек: %w", err)
	}

	snap := BuildSnapshot(games, settings, c.now())

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"games":   len(snap.Games),
		"weights": snap.Weights,
	}).Debug("Кеш конфигурации обновлён")

	return snap, nil
}

// Snapshot возвращает текущий снимок.
func (c *Cache) Snapshot() (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, common.ErrCacheNotInitialized
	}
	return c.snap, nil
}

// Invalidate сбрасывает снимок. Следующий Refresh загрузит всё заново.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// BuildSnapshot собирает снимок из строк БД и настроек.
//
// Неактивные игры отбрасываются. Испорченная кастомная лестница
// не ломает снимок: игра просто откатывается на лестницу провайдера.
func BuildSnapshot(games []GameConfig, settings map[string]string, now time.Time) *Snapshot {
	snap := &Snapshot{
		ByProvider:  make(map[Provider][]GameDefinition),
		Ladders:     make(map[LadderType][]float64, len(LadderFamilies)),
		Params:      make(map[string]string, len(settings)),
		RefreshedAt: now,
	}

	for k, v := range settings {
		snap.Params[k] = v
	}

	for _, row := range games {
		if !row.IsActive {
			continue
		}
		def := toDefinition(row)
		snap.Games = append(snap.Games, def)
		snap.ByProvider[def.Provider] = append(snap.ByProvider[def.Provider], def)
	}

	// Провайдер без активных игр в выборе не участвует.
	for _, p := range Providers {
		if len(snap.ByProvider[p]) == 0 {
			continue
		}
		snap.Weights = append(snap.Weights, ProviderWeight{
			Provider: p,
			Weight:   parseWeight(settings[WeightSettingKey(p)], DefaultWeight(p)),
		})
	}

	for _, family := range LadderFamilies {
		ladder := ParseLadder(settings[LadderSettingKey(family)])
		if len(ladder) == 0 {
			ladder = DefaultLadder(family)
		}
		snap.Ladders[family] = ladder
	}

	return snap
}

func toDefinition(row GameConfig) GameDefinition {
	def := GameDefinition{
		GameID:     row.GameID,
		Name:       row.Name,
		Provider:   ParseProvider(row.Provider),
		LadderType: LadderType(strings.ToLower(strings.TrimSpace(row.LadderType))),
	}
	if def.LadderType == "" {
		def.LadderType = LadderDefault
	}
	if row.ImagePath != nil {
		def.ImagePath = *row.ImagePath
	}
	if row.CustomLadder != nil {
		def.CustomLadder = ParseLadder(*row.CustomLadder)
	}
	if def.LadderType == LadderCustom && len(def.CustomLadder) == 0 {
		log.WithField("game", row.GameID).Warn("Кастомная лестница пуста, используется лестница провайдера")
	}
	return def
}

// parseWeight читает вес 0–100, всё некорректное заменяется значением по умолчанию.
func parseWeight(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	w, err := strconv.Atoi(raw)
	if err != nil || w < 0 || w > 100 {
		return def
	}
	return w
}

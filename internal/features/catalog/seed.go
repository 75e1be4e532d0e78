// Package catalog — seed.go засевает каталог игр и веса провайдеров
// из встроенного catalog.yaml.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// SeedGame — игра из встроенного каталога.
type SeedGame struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	Ladder   string `yaml:"ladder"`
}

// SeedCatalog — содержимое catalog.yaml.
type SeedCatalog struct {
	ProviderWeights map[string]int `yaml:"provider_weights"`
	Games           []SeedGame     `yaml:"games"`
}

// DefaultCatalog разбирает встроенный каталог.
func DefaultCatalog() (*SeedCatalog, error) {
	var c SeedCatalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("ошибка разбора catalog.yaml: %w", err)
	}
	for _, g := range c.Games {
		if g.ID == "" || g.Name == "" {
			return nil, fmt.Errorf("catalog.yaml: игра без id или name")
		}
		if !ValidLadderType(g.Ladder) {
			return nil, fmt.Errorf("catalog.yaml: игра %s: %q", g.ID, g.Ladder)
		}
	}
	return &c, nil
}

// SeedStore — то, что нужно для засева.
type SeedStore interface {
	InsertGameIfMissing(ctx context.Context, g GameConfig) (bool, error)
	SetSettingIfMissing(ctx context.Context, key, value string) error
}

// Seed добавляет недостающие игры каталога и веса провайдеров.
// Существующие строки не трогает, поэтому безопасен при каждом старте.
func Seed(ctx context.Context, store SeedStore) (int, error) {
	c, err := DefaultCatalog()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, g := range c.Games {
		image := "/images/games/" + g.ID + ".png"
		ok, err := store.InsertGameIfMissing(ctx, GameConfig{
			GameID:     g.ID,
			Name:       g.Name,
			Provider:   string(ParseProvider(g.Provider)),
			ImagePath:  &image,
			IsActive:   true,
			LadderType: g.Ladder,
		})
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	for _, p := range Providers {
		w, ok := c.ProviderWeights[string(p)]
		if !ok {
			w = DefaultWeight(p)
		}
		if err := store.SetSettingIfMissing(ctx, WeightSettingKey(p), strconv.Itoa(w)); err != nil {
			return inserted, err
		}
	}

	if inserted > 0 {
		log.WithField("games", inserted).Info("Каталог игр засеян")
	}
	return inserted, nil
}

// Package catalog — service.go содержит операции админки над каталогом:
// включение/выключение игр, лестницы, веса провайдеров, журнал изменений.
// Каждое изменение пишется в audit_logs в той же транзакции,
// после коммита кеш перечитывается.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
)

// Store — то, что сервису нужно от хранилища.
type Store interface {
	Loader
	GetGame(ctx context.Context, gameID string) (*GameConfig, error)
	UpdateGame(ctx context.Context, gameID string, upd GameUpdate) error
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
	InsertAudit(ctx context.Context, entry AuditLog) error
	ListAudit(ctx context.Context, entity string, limit int) ([]AuditLog, error)
}

// Service управляет каталогом игр.
type Service struct {
	store     Store
	cache     *Cache
	txManager trm.Manager
}

// NewService создаёт сервис каталога.
func NewService(store Store, cache *Cache, txManager trm.Manager) *Service {
	return &Service{store: store, cache: cache, txManager: txManager}
}

// ListGames возвращает все игры каталога.
func (s *Service) ListGames(ctx context.Context) ([]GameConfig, error) {
	return s.store.ListGames(ctx)
}

// UpdateGame проверяет и применяет изменения игры.
func (s *Service) UpdateGame(ctx context.Context, actor, gameID string, upd GameUpdate) (*GameConfig, error) {
	if err := validateGameUpdate(&upd); err != nil {
		return nil, err
	}

	var updated *GameConfig
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		old, err := s.store.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if err := s.store.UpdateGame(ctx, gameID, upd); err != nil {
			return err
		}
		for _, entry := range diffGame(actor, old, upd) {
			if err := s.store.InsertAudit(ctx, entry); err != nil {
				return err
			}
		}
		updated, err = s.store.GetGame(ctx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.refresh(ctx)
	return updated, nil
}

// Settings возвращает настройки, которые можно менять из админки,
// с подставленными значениями по умолчанию.
func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, p := range Providers {
		key := WeightSettingKey(p)
		out[key] = strconv.Itoa(parseWeight(stored[key], DefaultWeight(p)))
	}
	for _, family := range LadderFamilies {
		key := LadderSettingKey(family)
		ladder := ParseLadder(stored[key])
		if len(ladder) == 0 {
			ladder = DefaultLadder(family)
		}
		out[key] = FormatLadder(ladder)
	}
	return out, nil
}

// UpdateSettings проверяет и записывает настройки.
// Пустое значение лестницы сбрасывает её к встроенной.
func (s *Service) UpdateSettings(ctx context.Context, actor string, updates map[string]string) error {
	normalized := make(map[string]string, len(updates))
	for key, value := range updates {
		v, err := validateSetting(key, value)
		if err != nil {
			return err
		}
		normalized[key] = v
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.store.ListSettings(ctx)
		if err != nil {
			return err
		}
		for key, value := range normalized {
			old, had := current[key]
			if (had && old == value) || (!had && value == "") {
				continue
			}
			if value == "" {
				err = s.store.DeleteSetting(ctx, key)
			} else {
				err = s.store.SetSetting(ctx, key, value)
			}
			if err != nil {
				return err
			}
			entry := AuditLog{AdminUserID: actor, Entity: "feed_settings", EntityID: strPtr(key), Field: "value", NewValue: strPtr(value)}
			if had {
				entry.OldValue = strPtr(old)
			}
			if err := s.store.InsertAudit(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// AuditLogs возвращает журнал изменений.
func (s *Service) AuditLogs(ctx context.Context, entity string, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListAudit(ctx, entity, limit)
}

// refresh перечитывает кеш. Ошибку только логируем: изменение уже в БД,
// а лента продолжит работать на старом снимке до следующего обновления.
func (s *Service) refresh(ctx context.Context) {
	if _, err := s.cache.Refresh(ctx); err != nil {
		log.WithError(err).Error("Не удалось обновить кеш конфигурации")
	}
}

func validateGameUpdate(upd *GameUpdate) error {
	if upd.Empty() {
		return common.ErrEmptyUpdate
	}
	if upd.LadderType != nil {
		lt := strings.ToLower(strings.TrimSpace(*upd.LadderType))
		if !ValidLadderType(lt) {
			return fmt.Errorf("%q: %w", *upd.LadderType, common.ErrInvalidLadderType)
		}
		upd.LadderType = &lt
	}
	if upd.CustomLadder != nil && strings.TrimSpace(*upd.CustomLadder) != "" {
		ladder, err := ValidateLadder(*upd.CustomLadder)
		if err != nil {
			return err
		}
		norm := FormatLadder(ladder)
		upd.CustomLadder = &norm
	}
	return nil
}

func validateSetting(key, value string) (string, error) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(key, settingWeightPrefix) {
		p := Provider(strings.TrimPrefix(key, settingWeightPrefix))
		if ParseProvider(string(p)) != p {
			return "", fmt.Errorf("%s: %w", key, common.ErrUnknownSetting)
		}
		w, err := strconv.Atoi(value)
		if err != nil || w < 0 || w > 100 {
			return "", fmt.Errorf("%s=%q: %w", key, value, common.ErrInvalidWeight)
		}
		return strconv.Itoa(w), nil
	}

	if strings.HasPrefix(key, settingLadderPrefix) {
		family := LadderType(strings.TrimPrefix(key, settingLadderPrefix))
		switch family {
		case LadderPragmatic, LadderPlayngo, LadderNetent, LadderHacksaw:
		default:
			return "", fmt.Errorf("%s: %w", key, common.ErrUnknownSetting)
		}
		if value == "" {
			return "", nil
		}
		ladder, err := ValidateLadder(value)
		if err != nil {
			return "", err
		}
		return FormatLadder(ladder), nil
	}

	return "", fmt.Errorf("%s: %w", key, common.ErrUnknownSetting)
}

// diffGame строит записи журнала по изменившимся полям игры.
func diffGame(actor string, old *GameConfig, upd GameUpdate) []AuditLog {
	var out []AuditLog
	add := func(field string, oldVal, newVal *string) {
		if derefOr(oldVal) == derefOr(newVal) {
			return
		}
		out = append(out, AuditLog{
			AdminUserID: actor,
			Entity:      "game_configs",
			EntityID:    strPtr(old.GameID),
			Field:       field,
			OldValue:    oldVal,
			NewValue:    newVal,
		})
	}

	if upd.IsActive != nil {
		add("is_active", strPtr(strconv.FormatBool(old.IsActive)), strPtr(strconv.FormatBool(*upd.IsActive)))
	}
	if upd.LadderType != nil {
		add("ladder_type", strPtr(old.LadderType), upd.LadderType)
	}
	if upd.CustomLadder != nil {
		var newVal *string
		if *upd.CustomLadder != "" {
			newVal = upd.CustomLadder
		}
		add("custom_ladder", old.CustomLadder, newVal)
	}
	if upd.ImagePath != nil {
		add("image_path", old.ImagePath, upd.ImagePath)
	}
	return out
}

func strPtr(s string) *string { return &s }

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

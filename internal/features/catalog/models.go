// Package catalog хранит каталог игр ленты: провайдеров, веса провайдеров,
// лестницы ставок и кеш активной конфигурации, из которого читает генератор.
// models.go описывает структуры данных каталога.
package catalog

import (
	"strings"
	"time"
)

// Provider — поставщик игр. Влияет на вес выбора и на лестницу ставок.
type Provider string

const (
	ProviderPragmatic Provider = "pragmatic"
	ProviderPlayngo   Provider = "playngo"
	ProviderNetent    Provider = "netent"
	ProviderOther     Provider = "other"
)

// Providers — все провайдеры в порядке, в котором они участвуют в выборе.
var Providers = []Provider{ProviderPragmatic, ProviderPlayngo, ProviderNetent, ProviderOther}

// ParseProvider приводит строку к провайдеру. Всё неизвестное считается "other".
func ParseProvider(s string) Provider {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p
		}
	}
	return ProviderOther
}

// LadderType — какая дискретная лестница ставок применяется к игре.
type LadderType string

const (
	LadderDefault   LadderType = "default" // без лестницы, "естественные" ставки
	LadderPragmatic LadderType = "pragmatic"
	LadderPlayngo   LadderType = "playngo"
	LadderNetent    LadderType = "netent"
	LadderHacksaw   LadderType = "hacksaw"
	LadderCustom    LadderType = "custom"
)

// LadderFamilies — типы, у которых есть встроенная лестница.
var LadderFamilies = []LadderType{LadderPragmatic, LadderPlayngo, LadderNetent, LadderHacksaw}

// ValidLadderType проверяет, что тип лестницы известен.
func ValidLadderType(s string) bool {
	switch LadderType(s) {
	case LadderDefault, LadderPragmatic, LadderPlayngo, LadderNetent, LadderHacksaw, LadderCustom:
		return true
	}
	return false
}

// GameConfig — строка таблицы game_configs.
type GameConfig struct {
	ID           int64     `db:"id" json:"id"`
	GameID       string    `db:"game_id" json:"gameId"`
	Name         string    `db:"name" json:"name"`
	Provider     string    `db:"provider" json:"provider"`
	ImagePath    *string   `db:"image_path" json:"imagePath"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	LadderType   string    `db:"ladder_type" json:"ladderType"`
	CustomLadder *string   `db:"custom_ladder" json:"customLadder"` // CSV, например "1,2,5,10,25"
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// GameDefinition — активная игра в том виде, в каком её видит генератор.
type GameDefinition struct {
	GameID       string
	Name         string
	Provider     Provider
	ImagePath    string
	LadderType   LadderType
	CustomLadder []float64 // nil, если кастомной лестницы нет
}

// IsLadderGame — ставки берутся с дискретной лестницы, а не "естественные".
func (g GameDefinition) IsLadderGame() bool {
	return g.LadderType != LadderDefault || len(g.CustomLadder) > 0
}

// ProviderWeight — относительная вероятность выбора провайдера (0–100).
type ProviderWeight struct {
	Provider Provider `json:"provider"`
	Weight   int      `json:"weight"`
}

// GameUpdate — частичное обновление игры из админки. nil = поле не меняется.
type GameUpdate struct {
	IsActive     *bool   `json:"isActive,omitempty"`
	LadderType   *string `json:"ladderType,omitempty"`
	CustomLadder *string `json:"customLadder,omitempty"` // "" = убрать кастомную лестницу
	ImagePath    *string `json:"imagePath,omitempty"`
}

// Empty — в обновлении нет ни одного поля.
func (u GameUpdate) Empty() bool {
	return u.IsActive == nil && u.LadderType == nil && u.CustomLadder == nil && u.ImagePath == nil
}

// AuditLog — запись журнала изменений из админки.
type AuditLog struct {
	ID          int64     `db:"id" json:"id"`
	AdminUserID string    `db:"admin_user_id" json:"adminUserId"`
	Entity      string    `db:"entity" json:"entity"`
	EntityID    *string   `db:"entity_id" json:"entityId"`
	Field       string    `db:"field" json:"field"`
	OldValue    *string   `db:"old_value" json:"oldValue"`
	NewValue    *string   `db:"new_value" json:"newValue"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
}

// Ключи настроек ленты в таблице feed_settings.
const (
	settingWeightPrefix = "provider_weight_"
	settingLadderPrefix = "ladder_"
)

// WeightSettingKey — ключ настройки веса провайдера.
func WeightSettingKey(p Provider) string {
	return settingWeightPrefix + string(p)
}

// LadderSettingKey — ключ переопределения встроенной лестницы.
func LadderSettingKey(t LadderType) string {
	return settingLadderPrefix + string(t)
}

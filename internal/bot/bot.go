// Package bot публикует крупные выигрыши ленты в Telegram-чат.
// bot.go создаёт клиент telego и реализует подписчика ленты (feed.Sink).
package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/feed"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

// MessageSender — часть telego.Bot, которая нужна анонсеру.
type MessageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// NewAPI создаёт клиент Telegram Bot API.
func NewAPI(token string, debug bool) (*telego.Bot, error) {
	api, err := telego.NewBot(token, telego.WithDefaultLogger(debug, true))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	return api, nil
}

// Announcer отправляет в чат выигрыши с множителем не ниже порога.
type Announcer struct {
	api           MessageSender
	chatID        int64
	minMultiplier float64
}

// NewAnnouncer создаёт анонсер.
func NewAnnouncer(api MessageSender, chatID int64, minMultiplier float64) *Announcer {
	return &Announcer{api: api, chatID: chatID, minMultiplier: minMultiplier}
}

// Name — имя подписчика для логов.
func (a *Announcer) Name() string { return "telegram" }

// Publish анонсирует транзакцию, если это крупный выигрыш; остальные пропускает.
func (a *Announcer) Publish(ctx context.Context, t feed.Transaction) error {
	if !a.shouldAnnounce(t) {
		return nil
	}

	msg := tu.Message(tu.ID(a.chatID), formatAnnouncement(t)).WithParseMode(telego.ModeHTML)
	if _, err := a.api.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("ошибка отправки в чат %d: %w", a.chatID, err)
	}

	log.WithFields(log.Fields{
		"chat_id":    a.chatID,
		"username":   t.Username,
		"multiplier": t.MultiplierValue(),
	}).Debug("Крупный выигрыш отправлен в Telegram")
	return nil
}

func (a *Announcer) shouldAnnounce(t feed.Transaction) bool {
	return t.Type == generator.TypeWin && t.Multiplier != nil && t.MultiplierValue() >= a.minMultiplier
}

// formatAnnouncement собирает текст сообщения.
//
// Пример:
//
//	🎰 <b>Lu***77</b> выиграл на <b>Gates of Olympus</b>
//	Ставка: 25 000.00 ₺ · x125.5
func formatAnnouncement(t feed.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎰 <b>%s</b> выиграл на <b>%s</b>\n", html.EscapeString(t.Username), html.EscapeString(t.Game))
	fmt.Fprintf(&b, "Ставка: %s · x%s", html.EscapeString(common.FormatMoney(t.Amount, t.Currency)),
		strings.TrimSuffix(*t.Multiplier, "x"))
	return b.String()
}

// Package infra содержит адаптеры внешних систем: NATS и S3.
// nats.go подключается к NATS и публикует каждую транзакцию ленты в subject.
package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/features/feed"
)

// Connector — то, что нужно публикатору от соединения.
type Connector interface {
	Publish(subject string, data []byte) error
}

// NewNATSConnection подключается к NATS с бесконечным переподключением.
func NewNATSConnection(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("casino-feed"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("Соединение с NATS потеряно")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("Переподключились к NATS")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("Соединение с NATS закрыто")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.WithError(err).Error("Ошибка NATS")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к NATS: %w", err)
	}
	log.WithField("url", conn.ConnectedUrl()).Info("Подключение к NATS установлено")
	return conn, nil
}

// NATSPublisher — подписчик ленты, отправляющий транзакции в NATS.
type NATSPublisher struct {
	conn    Connector
	subject string
}

// NewNATSPublisher создаёт публикатор.
func NewNATSPublisher(conn Connector, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

// Name — имя подписчика для логов.
func (p *NATSPublisher) Name() string { return "nats" }

// Publish отправляет транзакцию той же JSON-формой, что и SSE.
func (p *NATSPublisher) Publish(ctx context.Context, t feed.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("ошибка сериализации транзакции: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("ошибка публикации в %s: %w", p.subject, err)
	}
	return nil
}

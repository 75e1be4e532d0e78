// Package feed — hub.go раздаёт транзакции подключённым SSE-клиентам.
// Медленный клиент не блокирует остальных: если его буфер полон, событие для него пропускается.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const clientBuffer = 32

// Hub — in-process рассылка для /api/transactions/stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

// NewHub создаёт пустой хаб.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

// Name — имя подписчика для логов.
func (h *Hub) Name() string { return "sse" }

// Subscribe регистрирует клиента. Функцию отписки нужно вызвать при разрыве соединения.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	log.WithField("clients", total).Debug("SSE-клиент подключился")

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			total := len(h.clients)
			h.mu.Unlock()
			log.WithField("clients", total).Debug("SSE-клиент отключился")
		})
	}
}

// Clients возвращает число подключённых клиентов.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish отправляет транзакцию всем клиентам.
func (h *Hub) Publish(_ context.Context, t Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("ошибка сериализации транзакции: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		log.WithFields(log.Fields{"dropped": dropped, "id": t.ID}).Debug("SSE: буфер клиента полон, событие пропущено")
	}
	return nil
}

// Package feed — handlers.go содержит публичные HTTP-обработчики ленты:
// список, ручное создание, статистику и SSE-поток.
package feed

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

const keepAliveInterval = 15 * time.Second

// HandlerDeps — зависимости обработчиков.
type HandlerDeps struct {
	Serv *Service
	Hub  *Hub
}

// Handler обрабатывает публичное API ленты.
type Handler struct {
	serv      *Service
	hub       *Hub
	keepAlive time.Duration
}

// NewHandler создаёт обработчики ленты.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, hub: deps.Hub, keepAlive: keepAliveInterval}
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/transactions", h.List)
	r.Post("/api/transactions", h.Create)
	r.Get("/api/transactions/stream", h.Stream)
	r.Get("/api/stats", h.Stats)
}

// List — GET /api/transactions?limit&cursor&type&search
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f ListFilter

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "Expected number", "limit")
			return
		}
		f.Limit = n
	}
	if raw := q.Get("cursor"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "Expected number", "cursor")
			return
		}
		f.Cursor = n
	}
	if raw := q.Get("type"); raw != "" {
		typ := generator.Type(strings.ToUpper(raw))
		if typ != generator.TypeWin && typ != generator.TypeLoss {
			common.WriteError(w, http.StatusBadRequest, "Expected 'WIN' | 'LOSS'", "type")
			return
		}
		f.Type = typ
	}
	f.Search = q.Get("search")

	page, err := h.serv.List(r.Context(), f)
	if err != nil {
		common.WriteInternal(w, err, "Ошибка получения ленты")
		return
	}
	common.WriteJSON(w, http.StatusOK, page)
}

// Create — POST /api/transactions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := common.DecodeJSON[CreateRequest](r.Body)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	created, err := h.serv.CreateManual(r.Context(), payload)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			common.WriteError(w, http.StatusBadRequest, verr.Message, verr.Field)
			return
		}
		common.WriteInternal(w, err, "Ошибка создания транзакции")
		return
	}
	common.WriteJSON(w, http.StatusCreated, created)
}

// Stats — GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.serv.Stats(r.Context())
	if err != nil {
		common.WriteInternal(w, err, "Ошибка получения статистики")
		return
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// Stream — GET /api/transactions/stream (Server-Sent Events).
// Первое событие {"type":"connected"}, дальше по событию на транзакцию.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.WriteError(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	if _, err := fmt.Fprint(w, "data: {\"type\":\"connected\"}\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-events:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				log.WithError(err).Debug("SSE: запись не удалась, закрываем поток")
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

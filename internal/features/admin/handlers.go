// Package admin — handlers.go обрабатывает HTTP API админки:
// вход, каталог игр, настройки ленты, журнал, пауза ленты, удаление транзакций.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/catalog"
	"serotonyl.ru/casino-feed/internal/features/feed"
)

// ImageStore сохраняет картинку игры и возвращает её публичный путь.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// HandlerDeps — зависимости обработчиков админки.
type HandlerDeps struct {
	Auth          *Service
	Tokens        *TokenIssuer
	Catalog       *catalog.Service
	Feed          *feed.Service
	Images        ImageStore // nil — загрузка картинок выключена
	MaxImageBytes int64
}

// Handler обрабатывает админ-запросы.
type Handler struct {
	auth          *Service
	tokens        *TokenIssuer
	catalog       *catalog.Service
	feed          *feed.Service
	images        ImageStore
	maxImageBytes int64
}

// NewHandler создаёт обработчик админки.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		auth:          deps.Auth,
		tokens:        deps.Tokens,
		catalog:       deps.Catalog,
		feed:          deps.Feed,
		images:        deps.Images,
		maxImageBytes: deps.MaxImageBytes,
	}
}

// Register подключает маршруты админки. Всё, кроме login, требует токен.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/admin/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.tokens))

		r.Get("/api/admin/me", h.Me)
		r.Get("/api/admin/games", h.ListGames)
		r.Patch("/api/admin/games/{gameId}", h.UpdateGame)
		r.Post("/api/admin/games/{gameId}/image", h.UploadImage)
		r.Get("/api/admin/settings", h.GetSettings)
		r.Put("/api/admin/settings", h.UpdateSettings)
		r.Get("/api/admin/audit-logs", h.AuditLogs)
		r.Post("/api/admin/feed/pause", h.PauseFeed)
		r.Post("/api/admin/feed/resume", h.ResumeFeed)
		r.Get("/api/admin/feed/status", h.FeedStatus)
		r.Delete("/api/admin/transactions/{id}", h.DeleteTransaction)
	})
}

// Login — POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := common.DecodeJSON[LoginRequest](r.Body)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if payload.Password == "" {
		common.WriteError(w, http.StatusBadRequest, "Required", "password")
		return
	}

	resp, err := h.auth.Login(r.Context(), common.ClientIP(r), payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

// Me — GET /api/admin/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	resp := MeResponse{User: actor(r.Context())}
	if claims != nil && claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

// ListGames — GET /api/admin/games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.ListGames(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if games == nil {
		games = []catalog.GameConfig{}
	}
	common.WriteJSON(w, http.StatusOK, games)
}

// UpdateGame — PATCH /api/admin/games/{gameId}
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	payload, err := common.DecodeJSON[catalog.GameUpdate](r.Body)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	game, err := h.catalog.UpdateGame(r.Context(), actor(r.Context()), chi.URLParam(r, "gameId"), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, game)
}

// UploadImage — POST /api/admin/games/{gameId}/image, тело — сам файл.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeServiceError(w, common.ErrImageStoreDisabled)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxImageBytes+1))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "Не удалось прочитать файл", "")
		return
	}
	if int64(len(data)) > h.maxImageBytes {
		writeServiceError(w, common.ErrImageTooLarge)
		return
	}

	contentType, ext, err := detectImage(data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	gameID := chi.URLParam(r, "gameId")
	key := fmt.Sprintf("games/%s%s", gameID, ext)
	url, err := h.images.Upload(r.Context(), key, contentType, data)
	if err != nil {
		common.WriteInternal(w, err, "Ошибка загрузки картинки в хранилище")
		return
	}

	game, err := h.catalog.UpdateGame(r.Context(), actor(r.Context()), gameID, catalog.GameUpdate{ImagePath: &url})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, game)
}

// detectImage определяет формат по содержимому, а не по заголовку запроса.
func detectImage(data []byte) (contentType, ext string, err error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/png":
		return ct, ".png", nil
	case "image/jpeg":
		return ct, ".jpg", nil
	case "image/webp":
		return ct, ".webp", nil
	default:
		return "", "", fmt.Errorf("%s: %w", ct, common.ErrUnsupportedImage)
	}
}

// GetSettings — GET /api/admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.Settings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, settings)
}

// UpdateSettings — PUT /api/admin/settings, тело {"provider_weight_netent": "10", ...}
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	payload, err := common.DecodeJSON[map[string]string](r.Body)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if len(payload) == 0 {
		writeServiceError(w, common.ErrEmptyUpdate)
		return
	}

	if err := h.catalog.UpdateSettings(r.Context(), actor(r.Context()), payload); err != nil {
		writeServiceError(w, err)
		return
	}
	h.GetSettings(w, r)
}

// AuditLogs — GET /api/admin/audit-logs?limit&entity
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.catalog.AuditLogs(r.Context(), r.URL.Query().Get("entity"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []catalog.AuditLog{}
	}
	common.WriteJSON(w, http.StatusOK, logs)
}

// PauseFeed — POST /api/admin/feed/pause
func (h *Handler) PauseFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.Pause()
	log.WithField("admin", actor(r.Context())).Info("Лента остановлена из админки")
	common.WriteJSON(w, http.StatusOK, h.feed.Status())
}

// ResumeFeed — POST /api/admin/feed/resume
func (h *Handler) ResumeFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.Resume()
	log.WithField("admin", actor(r.Context())).Info("Лента запущена из админки")
	common.WriteJSON(w, http.StatusOK, h.feed.Status())
}

// FeedStatus — GET /api/admin/feed/status
func (h *Handler) FeedStatus(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.feed.Status())
}

// DeleteTransaction — DELETE /api/admin/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		common.WriteError(w, http.StatusBadRequest, "Expected number", "id")
		return
	}
	if err := h.feed.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	log.WithFields(log.Fields{"admin": actor(r.Context()), "id": id}).Info("Транзакция удалена")
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError переводит доменные ошибки в HTTP-статусы.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrTooManyAttempts):
		common.WriteError(w, http.StatusTooManyRequests, common.ErrTooManyAttempts.Error(), "")
	case errors.Is(err, common.ErrWrongPassword):
		common.WriteError(w, http.StatusUnauthorized, common.ErrWrongPassword.Error(), "password")
	case errors.Is(err, common.ErrGameNotFound), errors.Is(err, common.ErrTransactionNotFound):
		common.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, common.ErrInvalidLadder):
		common.WriteError(w, http.StatusBadRequest, err.Error(), "customLadder")
	case errors.Is(err, common.ErrInvalidLadderType):
		common.WriteError(w, http.StatusBadRequest, err.Error(), "ladderType")
	case errors.Is(err, common.ErrInvalidWeight), errors.Is(err, common.ErrUnknownSetting), errors.Is(err, common.ErrEmptyUpdate):
		common.WriteError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, common.ErrImageStoreDisabled):
		common.WriteError(w, http.StatusServiceUnavailable, err.Error(), "")
	case errors.Is(err, common.ErrImageTooLarge):
		common.WriteError(w, http.StatusRequestEntityTooLarge, err.Error(), "")
	case errors.Is(err, common.ErrUnsupportedImage):
		common.WriteError(w, http.StatusUnsupportedMediaType, common.ErrUnsupportedImage.Error(), "")
	default:
		common.WriteInternal(w, err, "Ошибка админ-запроса")
	}
}

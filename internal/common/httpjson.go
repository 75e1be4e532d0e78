// Package common — httpjson.go содержит помощники HTTP-обработчиков:
// чтение JSON-тела и ответы в едином формате {message, field}.
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// maxBodyBytes ограничивает JSON-тела запросов.
const maxBodyBytes = 1 << 20

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// DecodeJSON читает тело запроса в T. Неизвестные поля игнорируются.
func DecodeJSON[T any](body io.Reader) (T, error) {
	var payload T
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, fmt.Errorf("пустое тело запроса")
		}
		return payload, fmt.Errorf("некорректный JSON: %w", err)
	}
	return payload, nil
}

// WriteJSON отвечает JSON-ом с заданным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Не удалось записать JSON-ответ")
	}
}

// WriteError отвечает ошибкой {message, field}.
func WriteError(w http.ResponseWriter, status int, message, field string) {
	WriteJSON(w, status, ErrorResponse{Message: message, Field: field})
}

// WriteInternal логирует ошибку и отвечает 500 без подробностей.
func WriteInternal(w http.ResponseWriter, err error, msg string) {
	log.WithError(err).Error(msg)
	WriteError(w, http.StatusInternalServerError, "Internal server error", "")
}

// ClientIP возвращает IP клиента без порта.
// За прокси RemoteAddr уже подменён middleware.RealIP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

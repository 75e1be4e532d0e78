// Package middleware содержит промежуточные обработчики HTTP для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
)

// LogRequest логирует запрос после ответа.
// Записывает: method, path, status, длительность, IP клиента.
func LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		fields := log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
			"remote":   common.ClientIP(r),
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			fields["request_id"] = id
		}

		entry := log.WithFields(fields)
		switch {
		case ww.Status() >= http.StatusInternalServerError:
			entry.Error("HTTP-запрос")
		case ww.Status() >= http.StatusBadRequest:
			entry.Info("HTTP-запрос")
		default:
			entry.Debug("HTTP-запрос")
		}
	})
}

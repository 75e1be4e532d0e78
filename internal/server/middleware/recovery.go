package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
)

// RecoverFromPanic используется через defer в фоновых задачах (cron).
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": component,
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("ПАНИКА — восстановлено")
	}
}

// Recover перехватывает панику в HTTP-обработчике и отвечает 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithFields(log.Fields{
					"component": "http",
					"method":    r.Method,
					"path":      r.URL.Path,
					"panic":     fmt.Sprintf("%v", rec),
					"stack":     string(debug.Stack()),
				}).Error("ПАНИКА в обработчике — восстановлено")
				common.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

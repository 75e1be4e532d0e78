// Package admin — middleware.go проверяет Bearer-токен на маршрутах админки.
package admin

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
)

type ctxKey struct{}

// RequireAdmin пропускает запрос только с валидным токеном администратора.
func RequireAdmin(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				common.WriteError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error(), "")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("Отклонён токен админки")
				common.WriteError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error(), "")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext возвращает claims, положенные RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// actor — кто выполняет изменение (для журнала).
func actor(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok && c.Subject != "" {
		return c.Subject
	}
	return AdminSubject
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

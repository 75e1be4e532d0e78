// Package admin реализует вход в админку по паролю (Argon2id), выдачу JWT
// и HTTP-обработчики управления лентой.
// models.go описывает попытки входа и тела запросов/ответов.
package admin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject — subject токена единственного администратора.
const AdminSubject = "admin"

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64     `db:"id"`
	RemoteAddr  string    `db:"remote_addr"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// LoginRequest — тело POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse — выданный токен.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MeResponse — ответ GET /api/admin/me.
type MeResponse struct {
	User      string    `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims — содержимое access-токена.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

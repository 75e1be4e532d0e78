// Package admin — service.go содержит логику входа: проверку пароля Argon2id,
// лимит неудачных попыток и выдачу токена.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/casino-feed/internal/common"
)

// Лимит неудачных попыток входа
const (
	maxFailedAttempts = 3
	attemptsWindow    = 1 * time.Hour
)

// Параметры Argon2id для новых хешей (hash-password).
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLen     = 16
	argonKeyLen      = 32
)

// AttemptStore — журнал попыток входа.
type AttemptStore interface {
	LogAttempt(ctx context.Context, remoteAddr string, success bool) error
	GetRecentAttempts(ctx context.Context, remoteAddr string, period time.Duration) (int, error)
}

// Service управляет входом в админку.
type Service struct {
	repo         AttemptStore
	tokens       *TokenIssuer
	passwordHash string
}

// NewService создаёт сервис админки.
func NewService(repo AttemptStore, tokens *TokenIssuer, passwordHash string) *Service {
	return &Service{repo: repo, tokens: tokens, passwordHash: passwordHash}
}

// Login проверяет пароль и выдаёт токен.
// Защита от brute-force: 3 неудачные попытки с одного адреса = блокировка на 1 час.
func (s *Service) Login(ctx context.Context, remoteAddr, password string) (*LoginResponse, error) {
	attempts, err := s.repo.GetRecentAttempts(ctx, remoteAddr, attemptsWindow)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки попыток входа: %w", err)
	}
	if attempts >= maxFailedAttempts {
		return nil, common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)

	if err := s.repo.LogAttempt(ctx, remoteAddr, match); err != nil {
		log.WithError(err).Warn("Не удалось записать попытку входа")
	}

	if !match {
		log.WithField("remote_addr", remoteAddr).Warn("Неверный пароль администратора")
		return nil, common.ErrWrongPassword
	}

	token, expires, err := s.tokens.Issue(AdminSubject)
	if err != nil {
		return nil, err
	}
	log.WithField("remote_addr", remoteAddr).Info("Администратор вошёл в админку")
	return &LoginResponse{Token: token, ExpiresAt: expires}, nil
}

// --- Криптографические утилиты ---

// HashPassword строит хеш Argon2id в формате, который понимает verifyArgon2id.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

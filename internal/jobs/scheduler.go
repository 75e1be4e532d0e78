// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: тик ленты с фиксированным интервалом
// и ежедневную очистку старых данных.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/features/generator"
	"serotonyl.ru/casino-feed/internal/server/middleware"
)

// Расписание ежедневной очистки: 03:30 по локальному времени сервиса.
const cleanupSchedule = "30 3 * * *"

const (
	cleanupTimeout   = 2 * time.Minute
	attemptsRetained = 30 * 24 * time.Hour
)

// Ticker — то, что cron дёргает на каждом тике ленты.
type Ticker interface {
	Tick() *generator.Transaction
}

// FeedPruner удаляет старые симулированные транзакции.
type FeedPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// AttemptPruner удаляет старые попытки входа в админку.
type AttemptPruner interface {
	PruneAttempts(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	feed     Ticker
	pruner   FeedPruner
	attempts AttemptPruner
	interval time.Duration
	now      func() time.Time
}

// NewScheduler создаёт планировщик в часовом поясе loc.
func NewScheduler(loc *time.Location, interval time.Duration, feed Ticker, pruner FeedPruner, attempts AttemptPruner) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		feed:     feed,
		pruner:   pruner,
		attempts: attempts,
		interval: interval,
		now:      time.Now,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.tick); err != nil {
		return fmt.Errorf("не удалось зарегистрировать тик ленты: %w", err)
	}

	if _, err := s.cron.AddFunc(cleanupSchedule, func() { s.cleanup(ctx) }); err != nil {
		return fmt.Errorf("не удалось зарегистрировать очистку: %w", err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"interval": s.interval.String(),
		"location": s.cron.Location().String(),
	}).Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) tick() {
	defer middleware.RecoverFromPanic("cron.tick")
	s.feed.Tick()
}

func (s *Scheduler) cleanup(parent context.Context) {
	defer middleware.RecoverFromPanic("cron.cleanup")

	ctx, cancel := context.WithTimeout(parent, cleanupTimeout)
	defer cancel()

	log.Info("[CRON] Ежедневная очистка")

	if s.pruner != nil {
		n, err := s.pruner.Prune(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки ленты")
		} else if n > 0 {
			log.WithField("deleted", n).Info("[CRON] Удалены старые транзакции")
		}
	}

	if s.attempts != nil {
		n, err := s.attempts.PruneAttempts(ctx, s.now().Add(-attemptsRetained))
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки попыток входа")
		} else if n > 0 {
			log.WithField("deleted", n).Debug("[CRON] Удалены старые попытки входа")
		}
	}
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

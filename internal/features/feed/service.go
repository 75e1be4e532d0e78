// Package feed — service.go содержит эмиттер ленты.
//
// Один тик: генератор выдаёт событие, дальше сохранение и раздача
// подписчикам идут в отдельной горутине с таймаутом. Тик не ждёт
// ни базу, ни подписчиков.
package feed

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/features/generator"
)

// Store — хранилище транзакций (Repository или фейк в тестах).
type Store interface {
	List(ctx context.Context, f ListFilter) ([]Transaction, error)
	Create(ctx context.Context, t Transaction) (*Transaction, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
	PruneSimulated(ctx context.Context, before time.Time) (int64, error)
}

// Sink получает каждую сохранённую транзакцию: SSE-хаб, NATS, Telegram.
// Ошибка подписчика только логируется.
type Sink interface {
	Name() string
	Publish(ctx context.Context, t Transaction) error
}

// Generator — источник синтетических событий.
type Generator interface {
	Tick() (*generator.Transaction, error)
	Status() generator.Status
}

// Options — параметры эмиттера из конфигурации.
type Options struct {
	Currency        string
	Interval        time.Duration
	DispatchTimeout time.Duration
	RetentionDays   int
}

// Status — состояние эмиттера для админки.
type Status struct {
	Paused    bool             `json:"paused"`
	Interval  string           `json:"interval"`
	Emitted   int64            `json:"emitted"`
	Skipped   int64            `json:"skipped"`
	Generator generator.Status `json:"generator"`
}

// Service управляет лентой.
type Service struct {
	store Store
	gen   Generator
	sinks []Sink
	opts  Options
	now   func() time.Time

	paused  atomic.Bool
	emitted atomic.Int64
	skipped atomic.Int64

	wg sync.WaitGroup
}

// NewService создаёт сервис ленты.
func NewService(store Store, gen Generator, opts Options, sinks ...Sink) *Service {
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 5 * time.Second
	}
	return &Service{
		store: store,
		gen:   gen,
		sinks: sinks,
		opts:  opts,
		now:   time.Now,
	}
}

// AddSink подключает подписчика. Вызывать до запуска планировщика.
func (s *Service) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Tick выполняет один тик ленты и возвращает событие (nil, если тик пропущен).
// На паузе генератор не вызывается, поэтому кулдауны не уменьшаются.
func (s *Service) Tick() *generator.Transaction {
	if s.paused.Load() {
		s.skipped.Add(1)
		return nil
	}

	gtx, err := s.gen.Tick()
	switch {
	case errors.Is(err, common.ErrCacheNotInitialized):
		s.skipped.Add(1)
		log.Warn("Кеш конфигурации не инициализирован, тик пропущен")
		return nil
	case errors.Is(err, common.ErrNoActiveGames):
		s.skipped.Add(1)
		log.Debug("Нет активных игр, тик пропущен")
		return nil
	case err != nil:
		s.skipped.Add(1)
		log.WithError(err).Error("Ошибка генерации транзакции")
		return nil
	}

	s.emitted.Add(1)
	s.dispatch(FromGenerated(gtx))
	return gtx
}

// dispatch сохраняет транзакцию и раздаёт её подписчикам в фоне.
// Горутины тиков независимы: при неровной задержке базы порядок id и SSE
// может не совпасть с порядком генерации.
func (s *Service) dispatch(t Transaction) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("Паника при раздаче транзакции")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.DispatchTimeout)
		defer cancel()

		saved, err := s.store.Create(ctx, t)
		if err != nil {
			log.WithError(err).WithField("username", t.Username).Error("Не удалось сохранить транзакцию")
			return
		}
		s.publish(ctx, *saved)
	}()
}

func (s *Service) publish(ctx context.Context, t Transaction) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, t); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"sink": sink.Name(),
				"id":   t.ID,
			}).Warn("Подписчик не принял транзакцию")
		}
	}
}

// Wait дожидается фоновых раздач (на shutdown).
func (s *Service) Wait() {
	s.wg.Wait()
}

// Pause останавливает генерацию; таймер продолжает тикать.
func (s *Service) Pause() {
	if !s.paused.Swap(true) {
		log.Info("Лента поставлена на паузу")
	}
}

// Resume возобновляет генерацию.
func (s *Service) Resume() {
	if s.paused.Swap(false) {
		log.Info("Лента возобновлена")
	}
}

// Status возвращает состояние эмиттера и генератора.
func (s *Service) Status() Status {
	return Status{
		Paused:    s.paused.Load(),
		Interval:  s.opts.Interval.String(),
		Emitted:   s.emitted.Load(),
		Skipped:   s.skipped.Load(),
		Generator: s.gen.Status(),
	}
}

// List возвращает страницу ленты. nextCursor — id последней записи страницы.
func (s *Service) List(ctx context.Context, f ListFilter) (*Page, error) {
	f.Normalize()
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Transaction{}
	}
	page := &Page{Items: items}
	if n := len(items); n > 0 {
		last := items[n-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// Stats возвращает статистику прибыли.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

// CreateManual проверяет и сохраняет ручную транзакцию, затем раздаёт её подписчикам.
func (s *Service) CreateManual(ctx context.Context, req CreateRequest) (*Transaction, error) {
	t, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Create(ctx, t)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func(t Transaction) {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(context.Background(), s.opts.DispatchTimeout)
		defer cancel()
		s.publish(pctx, t)
	}(*saved)

	return saved, nil
}

func (s *Service) validate(req CreateRequest) (Transaction, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Transaction{}, &ValidationError{Field: "username", Message: "Required"}
	}

	amount, err := common.ParseAmount(string(req.Amount))
	if err != nil {
		return Transaction{}, &ValidationError{Field: "amount", Message: "Invalid amount"}
	}

	typ := generator.Type(strings.ToUpper(strings.TrimSpace(req.Type)))
	if typ != generator.TypeWin && typ != generator.TypeLoss {
		return Transaction{}, &ValidationError{Field: "type", Message: "Expected 'WIN' | 'LOSS'"}
	}

	game := strings.TrimSpace(req.Game)
	if game == "" {
		return Transaction{}, &ValidationError{Field: "game", Message: "Required"}
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = s.opts.Currency
	}

	t := Transaction{
		Username:  username,
		Amount:    amount.StringFixed(2),
		Currency:  currency,
		Type:      typ,
		Game:      game,
		Timestamp: s.now(),
	}

	if typ == generator.TypeWin && req.Multiplier != nil && strings.TrimSpace(*req.Multiplier) != "" {
		m, ok := common.ParseMultiplier(*req.Multiplier)
		if !ok || m <= 0 {
			return Transaction{}, &ValidationError{Field: "multiplier", Message: "Invalid multiplier"}
		}
		ms := strings.TrimSpace(*req.Multiplier)
		if !strings.HasSuffix(ms, "x") {
			ms += "x"
		}
		t.Multiplier = &ms
	}
	return t, nil
}

// Delete удаляет транзакцию (админка).
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Prune удаляет синтетические транзакции старше срока хранения.
// RetentionDays = 0 выключает очистку.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.opts.RetentionDays <= 0 {
		return 0, nil
	}
	before := s.now().Add(-time.Duration(s.opts.RetentionDays) * 24 * time.Hour)
	n, err := s.store.PruneSimulated(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("очистка ленты: %w", err)
	}
	return n, nil
}

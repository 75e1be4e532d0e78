// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// подписчиков ленты и собирает всё в один объект App.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/casino-feed/internal/bot"
	"serotonyl.ru/casino-feed/internal/common"
	"serotonyl.ru/casino-feed/internal/config"
	"serotonyl.ru/casino-feed/internal/db/postgres"
	"serotonyl.ru/casino-feed/internal/features/admin"
	"serotonyl.ru/casino-feed/internal/features/catalog"
	"serotonyl.ru/casino-feed/internal/features/feed"
	"serotonyl.ru/casino-feed/internal/features/generator"
	"serotonyl.ru/casino-feed/internal/infra"
	"serotonyl.ru/casino-feed/internal/jobs"
	"serotonyl.ru/casino-feed/internal/server"
	"serotonyl.ru/casino-feed/internal/server/middleware"
)

const shutdownTimeout = 10 * time.Second

// App содержит все компоненты приложения.
type App struct {
	DB        *pgxpool.Pool
	Feed      *feed.Service
	Scheduler *jobs.Scheduler
	Server    *http.Server

	limiter    *middleware.RateLimiter
	natsConn   *nats.Conn
	cancelReqs context.CancelFunc
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := common.LoadLocation(cfg.AppTimezone)

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	a := &App{DB: pool}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	txManager, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания менеджера транзакций: %w", err)
	}

	// === 2. Репозитории и схема ===
	catalogRepo := catalog.NewRepository(pool)
	feedRepo := feed.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	if err := prepareDatabase(ctx, cfg, pool, catalogRepo, feedRepo); err != nil {
		return nil, err
	}

	// === 3. Кеш конфигурации и генератор ===
	cache := catalog.NewCache(catalogRepo)
	if _, err := cache.Refresh(ctx); err != nil {
		// Генератор сам пропускает тики, пока кеш пуст; админка может починить конфигурацию.
		log.WithError(err).Error("Не удалось загрузить конфигурацию игр, лента ждёт обновления кеша")
	}

	gen := generator.New(cache,
		generator.WithCurrency(cfg.FeedCurrency),
		generator.WithLocation(loc),
	)

	// === 4. Сервисы ===
	catalogService := catalog.NewService(catalogRepo, cache, txManager)

	hub := feed.NewHub()
	feedService := feed.NewService(feedRepo, gen, feed.Options{
		Currency:        cfg.FeedCurrency,
		Interval:        cfg.FeedInterval,
		DispatchTimeout: cfg.FeedDispatchTimeout,
		RetentionDays:   cfg.FeedRetentionDays,
	}, hub)
	a.Feed = feedService

	tokens := admin.NewTokenIssuer(cfg.AdminJWTSecret, cfg.AdminTokenTTL)
	authService := admin.NewService(adminRepo, tokens, cfg.AdminPasswordHash)

	// === 5. Внешние подписчики ленты ===
	if cfg.NatsURL != "" {
		conn, err := infra.NewNATSConnection(cfg.NatsURL)
		if err != nil {
			return nil, err
		}
		a.natsConn = conn
		feedService.AddSink(infra.NewNATSPublisher(conn, cfg.NatsSubject))
	}

	if cfg.TelegramEnabled() {
		api, err := bot.NewAPI(cfg.TelegramBotToken, cfg.AppEnv == "development")
		if err != nil {
			return nil, err
		}
		feedService.AddSink(bot.NewAnnouncer(api, cfg.TelegramChatID, cfg.TelegramMinMultiplier))
		log.WithField("chat_id", cfg.TelegramChatID).Info("Анонсы крупных выигрышей в Telegram включены")
	}

	var images admin.ImageStore
	if cfg.S3Bucket != "" {
		s3cfg := infra.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.S3PublicURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}
		client, err := infra.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		images = infra.NewS3ImageStore(client, s3cfg)
	}

	// === 6. HTTP ===
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	router := server.NewRouter(server.RouterDeps{
		CORSOrigins: cfg.CORSOrigins(),
		RateLimiter: a.limiter,
		Health:      pool.Ping,
		Features: []server.Routes{
			feed.NewHandler(feed.HandlerDeps{Serv: feedService, Hub: hub}),
			admin.NewHandler(admin.HandlerDeps{
				Auth:          authService,
				Tokens:        tokens,
				Catalog:       catalogService,
				Feed:          feedService,
				Images:        images,
				MaxImageBytes: cfg.S3MaxImageBytes,
			}),
		},
	})

	reqCtx, cancelReqs := context.WithCancel(context.Background())
	a.cancelReqs = cancelReqs
	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		// SSE-потоки живут долго, поэтому WriteTimeout не задан;
		// на shutdown их контексты отменяются через reqCtx.
		BaseContext: func(net.Listener) context.Context { return reqCtx },
	}

	// === 7. Планировщик задач ===
	a.Scheduler = jobs.NewScheduler(loc, cfg.FeedInterval, feedService, feedService, adminRepo)

	ok = true
	return a, nil
}

// Run запускает планировщик и HTTP-сервер и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", a.Server.Addr).Info("HTTP-сервер запущен")
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("HTTP-сервер упал: %w", err)
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Сначала останавливаем тики, потом закрываем SSE и сервер, потом дожидаемся рассылки.
	a.Scheduler.Stop()
	a.cancelReqs()
	if err := a.Server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP-сервер остановлен не чисто")
	}
	a.Feed.Wait()
}

// Close освобождает ресурсы: NATS, rate limiter, пул БД.
func (a *App) Close() {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.natsConn.Close()
		}
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Seed подключается к базе, применяет миграции и засевает каталог и примеры.
// Используется командой `casino-feed seed`.
func Seed(ctx context.Context, cfg *config.Config) error {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	defer pool.Close()

	return prepareDatabase(ctx, cfg, pool, catalog.NewRepository(pool), feed.NewRepository(pool))
}

// prepareDatabase применяет миграции и засевает каталог (и примеры ленты, если включено).
func prepareDatabase(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, catalogRepo *catalog.Repository, feedRepo *feed.Repository) error {
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("ошибка миграций: %w", err)
	}

	n, err := catalog.Seed(ctx, catalogRepo)
	if err != nil {
		return fmt.Errorf("ошибка засева каталога: %w", err)
	}
	if n > 0 {
		log.WithField("games", n).Info("Каталог игр засеян")
	}

	if cfg.FeedSeedSamples {
		n, err := feed.SeedSamples(ctx, feedRepo, cfg.FeedCurrency)
		if err != nil {
			return fmt.Errorf("ошибка засева примеров ленты: %w", err)
		}
		if n > 0 {
			log.WithField("transactions", n).Info("Добавлены примеры транзакций")
		}
	}
	return nil
}

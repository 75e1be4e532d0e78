// Package main — точка входа сервиса ленты.
// Команды: serve (HTTP + генератор), seed (миграции и засев), hash-password.
// serve поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/casino-feed/internal/app"
	"serotonyl.ru/casino-feed/internal/config"
	"serotonyl.ru/casino-feed/internal/features/admin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("Команда завершилась с ошибкой")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "casino-feed",
		Short:         "Генератор живой ленты казино",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "путь к .env (отсутствие файла не ошибка)")

	root.AddCommand(
		newServeCmd(&envFile),
		newSeedCmd(&envFile),
		newHashPasswordCmd(),
	)
	return root
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и генератор ленты",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}

			log.Info("=== Лента запускается ===")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("не удалось инициализировать приложение: %w", err)
			}
			defer application.Close()

			log.Info("=== Лента готова к работе ===")
			if err := application.Run(ctx); err != nil {
				return err
			}

			log.Info("=== Лента остановлена ===")
			return nil
		},
	}
}

func newSeedCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Применить миграции и засеять каталог игр",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := app.Seed(cmd.Context(), cfg); err != nil {
				return err
			}
			log.Info("Засев завершён")
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Получить argon2id-хеш для ADMIN_PASSWORD_HASH",
		Long:  "Без аргумента пароль читается из первой строки stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := admin.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func readPassword(args []string, in io.Reader) (string, error) {
	if len(args) == 1 {
		if args[0] == "" {
			return "", errors.New("пустой пароль")
		}
		return args[0], nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("ошибка чтения stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("пустой пароль")
	}
	return password, nil
}

func loadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

// setupLogging настраивает формат и уровень логов.
// В продакшене JSON (для сборщика логов), локально читаемый текст.
func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err != nil {
		log.WithError(err).Warnf("Неизвестный уровень логов %q, используем info", cfg.AppLogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

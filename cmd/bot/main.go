// Package main — точка входа бота.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"serotonyl.ru/vending-bot/internal/app"
	"serotonyl.ru/vending-bot/internal/common"
	"serotonyl.ru/vending-bot/internal/config"
	"serotonyl.ru/vending-bot/internal/server"
)

func main() {
	// Настраиваем логирование
	setupLogging()

	log.Info("=== Бот запускается ===")

	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Устанавливаем уровень логирования из конфига
	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.AppLogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.AppLogFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // дней
			Compress:   true,
		}))
	}

	if err := common.SetTimezone(cfg.AppTimezone); err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC+3", cfg.AppTimezone)
	}

	// Контекст отменяется по Ctrl+C / docker stop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}

	// Запускаем планировщик задач (cron)
	if err := application.Scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Не удалось запустить планировщик")
	}
	defer application.Scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return application.Bot.Start(gctx)
	})
	if cfg.HTTPEnabled {
		g.Go(func() error {
			return server.Run(gctx, cfg.HTTPPort)
		})
	}

	log.Info("=== Бот готов к работе ===")

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Бот остановлен с ошибкой")
	}

	log.Info("=== Бот остановлен ===")
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}

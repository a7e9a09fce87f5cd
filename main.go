package main

import (
	"context"
	"errors"
	"os"

	"CryptoNews/internal/ai"
	"CryptoNews/internal/bot"
	"CryptoNews/internal/config"
	"CryptoNews/internal/logger"
	"CryptoNews/internal/market"
	"CryptoNews/internal/news"
	"CryptoNews/internal/pipeline"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usage = "Использование: cryptonews <news|trend>"

func main() {
	os.Exit(run(os.Args[1:]))
}

// parseTask возвращает задачу из аргументов командной строки
func parseTask(args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch args[0] {
	case pipeline.TaskNews, pipeline.TaskTrend:
		return args[0], true
	default:
		return args[0], false
	}
}

func run(args []string) int {
	// Задачу проверяем до загрузки конфигурации
	task, ok := parseTask(args)
	if !ok {
		logrus.WithField("task", task).Warn(usage)
		return 0
	}

	// Загружаем конфигурацию (.env, config.yaml, окружение)
	cfg, err := config.Load("")
	if err != nil {
		logrus.WithError(err).Error("Ошибка загрузки конфигурации")
		return 1
	}

	log, closer, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		logrus.WithError(err).Error("Ошибка настройки логгера")
		return 1
	}
	defer closer.Close()

	entry := log.WithFields(logrus.Fields{
		"run_id": uuid.NewString(),
		"task":   task,
	})

	if err := cfg.Validate(); err != nil {
		entry.WithError(err).Error("Неверная конфигурация")
		return 1
	}

	ctx := context.Background()

	telegramBot, err := bot.New(cfg, entry)
	if err != nil {
		entry.WithError(err).Error("❌ Ошибка создания бота")
		return 1
	}

	newsAggregator := news.NewNewsAggregator(entry)
	newsAggregator.AddDefaultSources(cfg)

	summarizer, err := ai.NewSummarizer(ctx, cfg, entry)
	if err != nil {
		// без модели новости публикуются как есть
		entry.WithError(err).Warn("⚠️ Ошибка создания суммаризатора")
		summarizer = ai.NewSummarizerWithModel(nil, entry)
	}

	runner := pipeline.NewRunner(
		newsAggregator,
		summarizer,
		telegramBot,
		market.NewCoinGeckoClient(cfg.Market.BaseURL),
		entry,
	)

	entry.Info("🚀 Запуск")
	if err := runner.Run(ctx, task); err != nil {
		if errors.Is(err, bot.ErrNotDelivered) {
			entry.WithError(err).Error("❌ Запуск завершился без публикации")
			return 1
		}
		entry.WithError(err).Warn("⚠️ Запуск завершился с ошибкой публикации")
		return 0
	}

	entry.Info("✅ Готово")
	return 0
}

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"CryptoNews/internal/ai"
	"CryptoNews/internal/market"
	"CryptoNews/internal/news"

	"github.com/sirupsen/logrus"
)

// Задачи, выбираемые аргументом командной строки
const (
	TaskNews  = "news"
	TaskTrend = "trend"
)

var ErrUnknownTask = errors.New("неизвестная задача")

type Selector interface {
	SelectBest(ctx context.Context) (news.Article, bool)
}

type Summarizer interface {
	Summarize(ctx context.Context, article news.Article) ai.Summary
}

type Publisher interface {
	PublishNews(ctx context.Context, summary *ai.Summary, article *news.Article) error
	PublishTrend(ctx context.Context, trend *market.Trend) error
}

type TrendFetcher interface {
	FetchTrend(ctx context.Context) (*market.Trend, error)
}

// Runner выполняет один линейный проход: выбор → пересказ → публикация
type Runner struct {
	selector   Selector
	summarizer Summarizer
	publisher  Publisher
	trends     TrendFetcher
	log        logrus.FieldLogger
}

func NewRunner(selector Selector, summarizer Summarizer, publisher Publisher, trends TrendFetcher, log logrus.FieldLogger) *Runner {
	return &Runner{
		selector:   selector,
		summarizer: summarizer,
		publisher:  publisher,
		trends:     trends,
		log:        log,
	}
}

// Run запускает задачу по имени
func (r *Runner) Run(ctx context.Context, task string) error {
	switch task {
	case TaskNews:
		return r.RunNews(ctx)
	case TaskTrend:
		return r.RunTrend(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
}

// RunNews: без статьи в канал уходит уведомление, и пересказ не вызывается
func (r *Runner) RunNews(ctx context.Context) error {
	article, ok := r.selector.SelectBest(ctx)
	if !ok {
		return r.publisher.PublishNews(ctx, nil, nil)
	}

	summary := r.summarizer.Summarize(ctx, article)
	return r.publisher.PublishNews(ctx, &summary, &article)
}

func (r *Runner) RunTrend(ctx context.Context) error {
	trend, err := r.trends.FetchTrend(ctx)
	if err != nil {
		r.log.WithError(err).Warn("⚠️ Ошибка получения тренда")
		return r.publisher.PublishTrend(ctx, nil)
	}
	return r.publisher.PublishTrend(ctx, trend)
}

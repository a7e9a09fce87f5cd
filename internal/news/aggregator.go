package news

import (
	"context"
	"unicode/utf8"

	"CryptoNews/internal/config"

	"github.com/sirupsen/logrus"
)

// NewsAggregator опрашивает источники по очереди, пока один из них не даст
// пригодные статьи
type NewsAggregator struct {
	sources []Source
	log     logrus.FieldLogger
}

// NewNewsAggregator создает новый агрегатор новостей
func NewNewsAggregator(log logrus.FieldLogger) *NewsAggregator {
	return &NewsAggregator{
		sources: make([]Source, 0),
		log:     log,
	}
}

// AddSource добавляет источник в конец цепочки
func (na *NewsAggregator) AddSource(source Source) {
	na.sources = append(na.sources, source)
}

// AddDefaultSources собирает цепочку NewsAPI → NewsData → RSS-ленты.
// Источник без ключа API пропускается.
func (na *NewsAggregator) AddDefaultSources(cfg *config.Config) {
	if cfg.News.NewsAPIKey != "" {
		na.AddSource(NewNewsAPISource(cfg.News.NewsAPIKey, cfg.News.NewsAPIURL, cfg.News.Query))
	} else {
		na.log.Warn("NEWS_API_KEY не задан, NewsAPI пропущен")
	}

	if cfg.News.NewsDataAPIKey != "" {
		na.AddSource(NewNewsDataSource(cfg.News.NewsDataAPIKey, cfg.News.NewsDataURL, cfg.News.Query))
	} else {
		na.log.Warn("NEWSDATA_API_KEY не задан, NewsData пропущен")
	}

	for _, feed := range cfg.News.Feeds {
		na.AddSource(NewRSSSource(feed.Name, feed.URL, feed.ThumbnailField))
	}
}

// Sources возвращает цепочку в порядке приоритета
func (na *NewsAggregator) Sources() []Source {
	return na.sources
}

// SelectBest проходит источники по приоритету и у первого непустого
// выбирает статью с самым длинным описанием. Следующие источники не опрашиваются.
func (na *NewsAggregator) SelectBest(ctx context.Context) (Article, bool) {
	for _, source := range na.sources {
		articles := Fetch(ctx, source, na.log)
		if len(articles) == 0 {
			continue
		}

		best := pickLongest(articles)
		na.log.WithFields(logrus.Fields{
			"source": source.GetName(),
			"title":  best.Title,
		}).Info("📰 Выбрана статья")
		return best, true
	}

	na.log.Warn("⚠️ Ни один источник не вернул пригодных статей")
	return Article{}, false
}

// Fetch вызывает источник и оставляет только пригодные статьи.
// Любая ошибка источника логируется и превращается в пустой результат.
func Fetch(ctx context.Context, source Source, log logrus.FieldLogger) []Article {
	entry := log.WithField("source", source.GetName())

	articles, err := source.FetchArticles(ctx)
	if err != nil {
		entry.WithError(err).Warn("⚠️ Ошибка получения новостей")
		return nil
	}

	usable := make([]Article, 0, len(articles))
	for _, article := range articles {
		if IsUsable(article) {
			usable = append(usable, article)
		}
	}

	entry.WithFields(logrus.Fields{
		"received": len(articles),
		"usable":   len(usable),
	}).Info("✅ Источник опрошен")

	return usable
}

// IsUsable: описание длиннее MinDescriptionLength символов
func IsUsable(article Article) bool {
	return utf8.RuneCountInString(article.Description) > MinDescriptionLength
}

// pickLongest возвращает статью с самым длинным описанием; при равенстве
// побеждает первая
func pickLongest(articles []Article) Article {
	best := articles[0]
	bestLen := utf8.RuneCountInString(best.Description)
	for _, article := range articles[1:] {
		if n := utf8.RuneCountInString(article.Description); n > bestLen {
			best, bestLen = article, n
		}
	}
	return best
}

package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// RSSSource представляет RSS-ленту как источник новостей.
// ThumbnailField указывает, откуда брать картинку: "media:content",
// "media:thumbnail" (любое расширение prefix:name с атрибутом url),
// "enclosure" или "image".
type RSSSource struct {
	Name           string
	URL            string
	ThumbnailField string

	httpClient *http.Client
}

// NewRSSSource создает источник для RSS-ленты
func NewRSSSource(name, url, thumbnailField string) *RSSSource {
	return &RSSSource{
		Name:           name,
		URL:            url,
		ThumbnailField: thumbnailField,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *RSSSource) GetName() string {
	return r.Name
}

func (r *RSSSource) FetchArticles(ctx context.Context) ([]Article, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = r.httpClient

	feed, err := fp.ParseURLWithContext(r.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения RSS %s: %w", r.Name, err)
	}

	// Лента без канала или без элементов: ноль статей, а не ошибка
	if feed == nil || len(feed.Items) == 0 {
		return nil, nil
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		title := cleanText(item.Title)
		if title == "" {
			continue
		}

		articles = append(articles, Article{
			Title:       title,
			Description: cleanText(item.Description),
			ImageURL:    thumbnail(item, r.ThumbnailField),
			SourceID:    r.Name,
			URL:         strings.TrimSpace(item.Link),
		})
	}

	return articles, nil
}

// thumbnail достает ссылку на картинку из поля, заданного для ленты
func thumbnail(item *gofeed.Item, field string) string {
	switch field {
	case "enclosure":
		for _, enc := range item.Enclosures {
			if enc != nil && enc.URL != "" {
				return enc.URL
			}
		}
	case "image", "":
	default:
		if prefix, name, ok := strings.Cut(field, ":"); ok {
			for _, ext := range item.Extensions[prefix][name] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

// cleanText очищает текст от HTML тегов и лишних пробелов
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "<br>", " ")
	text = strings.ReplaceAll(text, "<br/>", " ")
	text = strings.ReplaceAll(text, "<br />", " ")

	// Убираем HTML теги
	var result strings.Builder
	inTag := false
	for _, ch := range text {
		switch {
		case ch == '<':
			inTag = true
		case ch == '>':
			inTag = false
		case !inTag:
			result.WriteRune(ch)
		}
	}

	return strings.Join(strings.Fields(result.String()), " ")
}

package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewsDataSource - запасной агрегатор newsdata.io
type NewsDataSource struct {
	apiKey     string
	baseURL    string
	query      string
	httpClient *http.Client
}

func NewNewsDataSource(apiKey, baseURL, query string) *NewsDataSource {
	return &NewsDataSource{
		apiKey:     apiKey,
		baseURL:    baseURL,
		query:      query,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *NewsDataSource) GetName() string {
	return "NewsData"
}

func (s *NewsDataSource) FetchArticles(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("q", s.query)

	var raw newsDataResponse
	if err := getJSON(ctx, s.httpClient, s.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("ошибка запроса NewsData: %w", err)
	}

	if raw.Status != "success" {
		return nil, fmt.Errorf("ошибка NewsData: статус %q", raw.Status)
	}

	articles := make([]Article, 0, len(raw.Results))
	for _, item := range raw.Results {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		articles = append(articles, Article{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			ImageURL:    item.ImageURL,
			SourceID:    item.SourceID,
			URL:         item.Link,
		})
	}

	return articles, nil
}

type newsDataResponse struct {
	Status  string           `json:"status"`
	Results []newsDataResult `json:"results"`
}

type newsDataResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url"`
	SourceID    string `json:"source_id"`
}

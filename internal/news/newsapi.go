package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewsAPISource ищет новости через newsapi.org
type NewsAPISource struct {
	apiKey     string
	baseURL    string
	query      string
	httpClient *http.Client
}

func NewNewsAPISource(apiKey, baseURL, query string) *NewsAPISource {
	return &NewsAPISource{
		apiKey:     apiKey,
		baseURL:    baseURL,
		query:      query,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *NewsAPISource) GetName() string {
	return "NewsAPI"
}

func (s *NewsAPISource) FetchArticles(ctx context.Context) ([]Article, error) {
	params := url.Values{}
	params.Set("q", s.query)
	params.Set("apiKey", s.apiKey)

	var raw newsAPIResponse
	if err := getJSON(ctx, s.httpClient, s.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("ошибка запроса NewsAPI: %w", err)
	}

	if raw.Status != "ok" {
		return nil, fmt.Errorf("ошибка NewsAPI: %s %s", raw.Code, raw.Message)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		articles = append(articles, Article{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			ImageURL:    item.URLToImage,
			SourceID:    item.Source.Name,
			URL:         item.URL,
		})
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
}

// getJSON выполняет GET-запрос и декодирует JSON-ответ
func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ошибка статуса: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	return nil
}

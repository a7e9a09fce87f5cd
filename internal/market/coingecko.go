package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Направление движения цены
const (
	DirectionUp   = "Tăng"
	DirectionDown = "Giảm"
)

var ErrNotEnoughPrices = errors.New("недостаточно точек цены для анализа")

// Trend - изменение цены Bitcoin за последние сутки
type Trend struct {
	Direction        string
	LatestPrice      float64
	PreviousPrice    float64
	PercentageChange float64
}

// CoinGeckoClient получает историю цены с CoinGecko
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchTrend сравнивает первую и последнюю точку суточного графика
func (c *CoinGeckoClient) FetchTrend(ctx context.Context) (*Trend, error) {
	endpoint := c.baseURL + "/coins/bitcoin/market_chart?vs_currency=usd&days=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса CoinGecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка статуса CoinGecko: %d", resp.StatusCode)
	}

	var raw marketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа CoinGecko: %w", err)
	}

	return computeTrend(raw.Prices)
}

// computeTrend: точки приходят парами [timestamp_ms, price]
func computeTrend(prices [][]float64) (*Trend, error) {
	if len(prices) < 2 {
		return nil, ErrNotEnoughPrices
	}

	first, last := prices[0], prices[len(prices)-1]
	if len(first) < 2 || len(last) < 2 || first[1] == 0 {
		return nil, fmt.Errorf("неверный формат точки цены: %v, %v", first, last)
	}

	previous, latest := first[1], last[1]

	direction := DirectionDown
	if latest > previous {
		direction = DirectionUp
	}

	return &Trend{
		Direction:        direction,
		LatestPrice:      latest,
		PreviousPrice:    previous,
		PercentageChange: (latest - previous) / previous * 100,
	}, nil
}

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

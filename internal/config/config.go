package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Ошибки валидации конфигурации
var (
	ErrMissingTelegramToken = errors.New("TELEGRAM_TOKEN не установлен")
	ErrMissingChannel       = errors.New("TELEGRAM_CHANNEL не установлен")
	ErrNoFeeds              = errors.New("нужна хотя бы одна RSS-лента")
	ErrFeedMissingURL       = errors.New("у RSS-ленты не указан url")
	ErrInvalidTimezone      = errors.New("неверный часовой пояс")
	ErrInvalidSendRate      = errors.New("telegram.send_per_minute должен быть не меньше 1")
)

const (
	DefaultConfigFile    = "config.yaml"
	DefaultTimezone      = "Asia/Ho_Chi_Minh"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultNewsAPIURL    = "https://newsapi.org/v2/everything"
	DefaultNewsDataURL   = "https://newsdata.io/api/1/news"
	DefaultCoinGeckoURL  = "https://api.coingecko.com/api/v3"
	DefaultQuery         = "cryptocurrency"
	DefaultSendPerMinute = 20
)

// Config собирается один раз при старте и передается компонентам по указателю
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	News     NewsConfig     `yaml:"news"`
	LLM      LLMConfig      `yaml:"llm"`
	Market   MarketConfig   `yaml:"market"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
}

type TelegramConfig struct {
	Token         string `yaml:"-"`
	Channel       string `yaml:"channel"`
	SendPerMinute int    `yaml:"send_per_minute"`
}

type NewsConfig struct {
	Query          string       `yaml:"query"`
	NewsAPIKey     string       `yaml:"-"`
	NewsAPIURL     string       `yaml:"newsapi_url"`
	NewsDataAPIKey string       `yaml:"-"`
	NewsDataURL    string       `yaml:"newsdata_url"`
	Feeds          []FeedConfig `yaml:"feeds"`
}

// FeedConfig описывает одну RSS-ленту из цепочки
type FeedConfig struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	ThumbnailField string `yaml:"thumbnail_field"`
}

type LLMConfig struct {
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type MarketConfig struct {
	BaseURL string `yaml:"base_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultFeeds возвращает RSS-ленты в порядке приоритета
func DefaultFeeds() []FeedConfig {
	return []FeedConfig{
		{
			Name:           "CoinDesk",
			URL:            "https://www.coindesk.com/arc/outboundfeeds/rss/",
			ThumbnailField: "media:content",
		},
		{
			Name:           "Cointelegraph",
			URL:            "https://cointelegraph.com/rss",
			ThumbnailField: "enclosure",
		},
		{
			Name:           "Decrypt",
			URL:            "https://decrypt.co/feed",
			ThumbnailField: "media:content",
		},
	}
}

// Load читает .env, необязательный YAML-файл и переменные окружения.
// Пустой path означает CONFIG_FILE или config.yaml.
func Load(path string) (*Config, error) {
	// .env необязателен: в cron/CI секреты приходят из окружения
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга конфига %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("ошибка чтения конфига %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	c.News.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	c.News.NewsDataAPIKey = os.Getenv("NEWSDATA_API_KEY")
	c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")

	setIfPresent(&c.Telegram.Channel, "TELEGRAM_CHANNEL")
	setIfPresent(&c.LLM.Model, "GEMINI_MODEL")
	setIfPresent(&c.LLM.BaseURL, "GEMINI_BASE_URL")
	setIfPresent(&c.Log.Level, "LOG_LEVEL")
	setIfPresent(&c.Log.File, "LOG_FILE")
	setIfPresent(&c.Timezone, "TIMEZONE")

	if v := os.Getenv("TELEGRAM_SEND_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("неверный TELEGRAM_SEND_PER_MINUTE: %w", err)
		}
		c.Telegram.SendPerMinute = n
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Telegram.SendPerMinute == 0 {
		c.Telegram.SendPerMinute = DefaultSendPerMinute
	}
	if c.News.Query == "" {
		c.News.Query = DefaultQuery
	}
	if c.News.NewsAPIURL == "" {
		c.News.NewsAPIURL = DefaultNewsAPIURL
	}
	if c.News.NewsDataURL == "" {
		c.News.NewsDataURL = DefaultNewsDataURL
	}
	if len(c.News.Feeds) == 0 {
		c.News.Feeds = DefaultFeeds()
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultGeminiBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultGeminiModel
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = DefaultCoinGeckoURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate проверяет обязательные параметры. Ключи новостных API и модели
// необязательны: без ключа источник или суммаризатор просто отключаются.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingTelegramToken
	}
	if c.Telegram.Channel == "" {
		return ErrMissingChannel
	}
	if c.Telegram.SendPerMinute < 1 {
		return ErrInvalidSendRate
	}
	if len(c.News.Feeds) == 0 {
		return ErrNoFeeds
	}
	for i, feed := range c.News.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("лента %d (%s): %w", i, feed.Name, ErrFeedMissingURL)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location возвращает часовой пояс для отметки времени в сообщениях
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

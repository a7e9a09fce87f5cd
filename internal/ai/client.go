package ai

import (
	"context"
	"errors"
	"fmt"

	"CryptoNews/internal/config"
	"CryptoNews/internal/news"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are an editor of a Vietnamese cryptocurrency news channel. Answer with exactly three lines and nothing else."

const summaryPrompt = `Summarize the news article below for a Telegram channel.
Reply in Vietnamese with exactly three lines in this format:
1. Title: <short catchy headline>
2. Summary: <two or three sentences with the key facts>
3. Source: <name of the publication>

Article title: %s
Article description: %s
Publication: %s`

var errNoModel = errors.New("модель не настроена")

// ChatModel - та часть eino-модели, которая нужна суммаризатору
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Summarizer пересказывает статью через Gemini (OpenAI-совместимый эндпоинт)
type Summarizer struct {
	chatModel ChatModel
	log       logrus.FieldLogger
}

// NewSummarizer создает суммаризатор. Без GEMINI_API_KEY модель не создается,
// и Summarize всегда возвращает статью как есть.
func NewSummarizer(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Summarizer, error) {
	if cfg.LLM.APIKey == "" {
		log.Warn("GEMINI_API_KEY не задан, статьи публикуются без пересказа")
		return &Summarizer{log: log}, nil
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации LLM: %w", err)
	}

	return NewSummarizerWithModel(chatModel, log), nil
}

func NewSummarizerWithModel(chatModel ChatModel, log logrus.FieldLogger) *Summarizer {
	return &Summarizer{chatModel: chatModel, log: log}
}

// Summarize никогда не возвращает ошибку: при любом сбое статья уходит как есть
func (s *Summarizer) Summarize(ctx context.Context, article news.Article) Summary {
	summary, err := s.generate(ctx, article)
	if err != nil {
		s.log.WithError(err).WithField("title", article.Title).Warn("⚠️ Пересказ не удался, используем исходную статью")
		return Passthrough(article)
	}
	return summary
}

func (s *Summarizer) generate(ctx context.Context, article news.Article) (Summary, error) {
	if s.chatModel == nil {
		return Summary{}, errNoModel
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf(summaryPrompt, article.Title, article.Description, article.SourceID)),
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return Summary{}, fmt.Errorf("ошибка запроса к модели: %w", err)
	}
	if resp == nil {
		return Summary{}, errors.New("пустой ответ модели")
	}

	summary, ok := ParseSummary(resp.Content)
	if !ok {
		return Summary{}, fmt.Errorf("ответ модели не в формате трех строк: %q", resp.Content)
	}

	return summary, nil
}

// Passthrough собирает итог прямо из полей статьи
func Passthrough(article news.Article) Summary {
	return Summary{
		Title:   article.Title,
		Summary: article.Description,
		Source:  article.SourceID,
	}
}

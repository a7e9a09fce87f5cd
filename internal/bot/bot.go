package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"CryptoNews/internal/ai"
	"CryptoNews/internal/config"
	"CryptoNews/internal/market"
	"CryptoNews/internal/news"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Тексты уведомлений в канал
const (
	NoNewsNotice     = "Không thể lấy tin tức."
	NoTrendNotice    = "Không thể phân tích xu hướng."
	NewsErrorNotice  = "Đã xảy ra lỗi khi gửi tin tức."
	TrendErrorNotice = "Đã xảy ra lỗi khi gửi xu hướng."
)

var (
	// ErrPublishFailed: основное сообщение не ушло, уведомление об ошибке доставлено
	ErrPublishFailed = errors.New("сообщение не опубликовано")
	// ErrNotDelivered: в канал не ушло ничего, запуск завершается с ошибкой
	ErrNotDelivered = errors.New("ничего не доставлено в канал")
)

// maxCaptionLength - лимит Telegram на подпись к фото
const maxCaptionLength = 1024

const timeLayout = "15:04:05 02/01/2006"

// Sender - метод BotAPI, через который уходят все сообщения
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot публикует новости и тренды в канал
type Bot struct {
	api      Sender
	chat     tgbotapi.BaseChat
	location *time.Location
	limiter  *rate.Limiter
	log      logrus.FieldLogger
	now      func() time.Time
}

// New создает бота с подключением к Telegram Bot API
func New(cfg *config.Config, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}
	log.WithField("bot", api.Self.UserName).Info("🤖 Бот авторизован")

	return NewWithSender(api, cfg, log)
}

// NewWithSender создает бота поверх произвольного Sender
func NewWithSender(api Sender, cfg *config.Config, log logrus.FieldLogger) (*Bot, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	perMinute := cfg.Telegram.SendPerMinute
	if perMinute < 1 {
		return nil, config.ErrInvalidSendRate
	}

	return &Bot{
		api:      api,
		chat:     chatFor(cfg.Telegram.Channel),
		location: loc,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		log:      log,
		now:      time.Now,
	}, nil
}

// PublishNews публикует выбранную статью. Без статьи уходит уведомление
// NoNewsNotice. Если основное сообщение не отправилось, один раз пробуем
// отправить текстовое уведомление об ошибке.
func (b *Bot) PublishNews(ctx context.Context, summary *ai.Summary, article *news.Article) error {
	if article == nil {
		return b.sendNotice(ctx, NoNewsNotice)
	}

	if summary == nil {
		passthrough := ai.Passthrough(*article)
		summary = &passthrough
	}

	var msg tgbotapi.Chattable = b.markdown(b.formatNews(*summary, article.URL))
	if article.ImageURL != "" {
		if caption, ok := b.formatNewsCaption(*summary, article.URL); ok {
			msg = b.photo(article.ImageURL, caption)
		} else {
			b.log.WithField("title", summary.Title).Warn("⚠️ Подпись не помещается в лимит, отправляем текстом")
		}
	}

	if err := b.send(ctx, msg); err != nil {
		return b.fallback(ctx, err, NewsErrorNotice)
	}

	b.log.WithField("title", summary.Title).Info("✅ Новость опубликована")
	return nil
}

// PublishTrend публикует суточный тренд Bitcoin
func (b *Bot) PublishTrend(ctx context.Context, trend *market.Trend) error {
	if trend == nil {
		return b.sendNotice(ctx, NoTrendNotice)
	}

	if err := b.send(ctx, b.markdown(b.formatTrend(*trend))); err != nil {
		return b.fallback(ctx, err, TrendErrorNotice)
	}

	b.log.WithField("direction", trend.Direction).Info("✅ Тренд опубликован")
	return nil
}

func (b *Bot) fallback(ctx context.Context, cause error, notice string) error {
	b.log.WithError(cause).Error("❌ Ошибка отправки сообщения, отправляем уведомление")

	if err := b.send(ctx, b.plain(notice)); err != nil {
		b.log.WithError(err).Error("❌ Уведомление об ошибке тоже не отправилось")
		return errors.Join(ErrNotDelivered, cause, err)
	}

	return fmt.Errorf("%w: %w", ErrPublishFailed, cause)
}

func (b *Bot) sendNotice(ctx context.Context, notice string) error {
	if err := b.send(ctx, b.plain(notice)); err != nil {
		return fmt.Errorf("%w: ошибка отправки уведомления: %w", ErrNotDelivered, err)
	}
	b.log.WithField("notice", notice).Info("Отправлено уведомление")
	return nil
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) plain(text string) tgbotapi.MessageConfig {
	return tgbotapi.MessageConfig{
		BaseChat: b.chat,
		Text:     text,
	}
}

func (b *Bot) markdown(text string) tgbotapi.MessageConfig {
	msg := b.plain(text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (b *Bot) photo(imageURL, caption string) tgbotapi.PhotoConfig {
	return tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: b.chat,
			File:     tgbotapi.FileURL(imageURL),
		},
		Caption:   caption,
		ParseMode: tgbotapi.ModeMarkdown,
	}
}

func (b *Bot) updateTime() string {
	return b.now().In(b.location).Format(timeLayout)
}

// formatNews собирает текст поста: время, заголовок, пересказ, источник
func (b *Bot) formatNews(summary ai.Summary, url string) string {
	return b.newsText(summary, escape(summary.Summary), url)
}

// formatNewsCaption то же, что formatNews, но укладывается в лимит подписи.
// Сначала сокращается пересказ, затем заголовок; false, если не помогло и это.
func (b *Bot) formatNewsCaption(summary ai.Summary, url string) (string, bool) {
	body := []rune(summary.Summary)
	bodyText := escape(summary.Summary)
	text := b.newsText(summary, bodyText, url)

	overflow := utf8.RuneCountInString(text) - maxCaptionLength
	for overflow > 0 && len(body) > 0 {
		body = body[:max(0, len(body)-overflow-1)]
		bodyText = escape(strings.TrimSpace(string(body))) + "…"
		text = b.newsText(summary, bodyText, url)
		overflow = utf8.RuneCountInString(text) - maxCaptionLength
	}

	title := []rune(strip(summary.Title, "*"))
	for overflow > 0 && len(title) > 0 {
		title = title[:max(0, len(title)-overflow-1)]
		summary.Title = strings.TrimSpace(string(title)) + "…"
		text = b.newsText(summary, bodyText, url)
		overflow = utf8.RuneCountInString(text) - maxCaptionLength
	}

	return text, overflow <= 0
}

func (b *Bot) newsText(summary ai.Summary, body, url string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🕒 *Cập nhật*: %s\n", b.updateTime())
	fmt.Fprintf(&sb, "📰 *%s*\n\n", strip(summary.Title, "*"))
	sb.WriteString(body)
	sb.WriteString("\n\n")

	source := strip(summary.Source, "[]")
	if source == "" {
		source = "Không rõ"
	}
	if url != "" {
		fmt.Fprintf(&sb, "🔗 Nguồn: [%s](%s)", source, linkEscaper.Replace(url))
	} else {
		fmt.Fprintf(&sb, "🔗 Nguồn: %s", source)
	}

	return sb.String()
}

func (b *Bot) formatTrend(trend market.Trend) string {
	return fmt.Sprintf("🕒 *Cập nhật*: %s\n📈 *Xu hướng*: Giá Bitcoin đang %s\n💵 *Phân tích*: Giá hiện tại: $%.2f, thay đổi: %.2f%%",
		b.updateTime(),
		trend.Direction,
		trend.LatestPrice,
		trend.PercentageChange,
	)
}

// linkEscaper кодирует символы, которые обрывают адрес ссылки в Markdown
var linkEscaper = strings.NewReplacer(
	"(", "%28",
	")", "%29",
	`\`, "%5C",
	" ", "%20",
)

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

// strip убирает символы, которые нельзя экранировать внутри сущности
// (жирный текст, текст ссылки) в режиме Markdown
func strip(text, chars string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, text))
}

// chatFor: числовой идентификатор чата или @username канала
func chatFor(channel string) tgbotapi.BaseChat {
	channel = strings.TrimSpace(channel)
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tgbotapi.BaseChat{ChatID: id}
	}
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return tgbotapi.BaseChat{ChannelUsername: channel}
}

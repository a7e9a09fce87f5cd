package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"CryptoNews/internal/ai"
	"CryptoNews/internal/config"
	"CryptoNews/internal/market"
	"CryptoNews/internal/news"

	"github.com/go-playground/assert/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	failures int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.failures > 0 {
		f.failures--
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func newTestBot(t *testing.T, sender *fakeSender, channel string) *Bot {
	t.Helper()

	cfg := &config.Config{Timezone: "Asia/Ho_Chi_Minh"}
	cfg.Telegram.Channel = channel
	cfg.Telegram.SendPerMinute = 20

	log := logrus.New()
	log.SetOutput(io.Discard)

	b, err := NewWithSender(sender, cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	b.now = func() time.Time { return time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC) }
	return b
}

var (
	testArticle = news.Article{
		Title:       "Bitcoin Climbs Past $70K",
		Description: "Bitcoin rose above $70,000 on Tuesday as spot ETF inflows accelerated sharply.",
		ImageURL:    "https://cdn.example.com/btc.jpg",
		SourceID:    "CoinDesk",
		URL:         "https://example.com/btc",
	}
	testSummary = ai.Summary{
		Title:   "Bitcoin vượt 70.000 USD",
		Summary: "Dòng tiền vào quỹ ETF đẩy giá Bitcoin lên mức cao mới.",
		Source:  "CoinDesk",
	}
)

func TestPublishNewsWithImageSendsPhoto(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishNews(context.Background(), &testSummary, &testArticle)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(sender.sent))

	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, true, ok)
	assert.Equal(t, "@crypto_news", photo.ChannelUsername)
	assert.Equal(t, tgbotapi.FileURL("https://cdn.example.com/btc.jpg"), photo.File)
	assert.Equal(t, tgbotapi.ModeMarkdown, photo.ParseMode)
	assert.Equal(t, true, strings.Contains(photo.Caption, "*Bitcoin vượt 70.000 USD*"))
	assert.Equal(t, true, strings.Contains(photo.Caption, testSummary.Summary))
	assert.Equal(t, true, strings.Contains(photo.Caption, "[CoinDesk](https://example.com/btc)"))
}

func TestPublishNewsWithoutImageSendsText(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "-1001234567890")

	article := testArticle
	article.ImageURL = ""

	err := b.PublishNews(context.Background(), &testSummary, &article)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(sender.sent))

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, true, ok)
	assert.Equal(t, int64(-1001234567890), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Equal(t, true, strings.HasPrefix(msg.Text, "🕒 *Cập nhật*: 10:00:00 15/10/2026\n"))
}

func TestPublishNewsWithoutArticleSendsNotice(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishNews(context.Background(), nil, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(sender.sent))

	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, NoNewsNotice, msg.Text)
	assert.Equal(t, "", msg.ParseMode)
}

func TestPublishNewsFallsBackToPlainNotice(t *testing.T) {
	sender := &fakeSender{failures: 1}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishNews(context.Background(), &testSummary, &testArticle)

	assert.Equal(t, true, errors.Is(err, ErrPublishFailed))
	assert.Equal(t, false, errors.Is(err, ErrNotDelivered))
	assert.Equal(t, 2, len(sender.sent))

	notice := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, NewsErrorNotice, notice.Text)
	assert.Equal(t, "", notice.ParseMode)
}

func TestPublishNewsFallbackFailureIsTerminal(t *testing.T) {
	sender := &fakeSender{failures: 2}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishNews(context.Background(), &testSummary, &testArticle)

	assert.Equal(t, true, errors.Is(err, ErrNotDelivered))
	// одна попытка уведомления, без повторов
	assert.Equal(t, 2, len(sender.sent))
}

func TestPublishNewsWithoutSummaryUsesArticle(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishNews(context.Background(), nil, &testArticle)

	assert.Equal(t, nil, err)
	photo := sender.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, true, strings.Contains(photo.Caption, testArticle.Title))
}

func TestCaptionFitsTelegramLimit(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	long := testSummary
	long.Summary = strings.Repeat("giá_tăng ", 300)

	caption, ok := b.formatNewsCaption(long, testArticle.URL)

	assert.Equal(t, true, ok)
	assert.Equal(t, true, utf8.RuneCountInString(caption) <= maxCaptionLength)
	assert.Equal(t, true, strings.Contains(caption, "…"))
	assert.Equal(t, true, strings.HasSuffix(caption, "[CoinDesk](https://example.com/btc)"))
}

func TestCaptionShortensLongTitle(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	long := testSummary
	long.Title = strings.Repeat("Bitcoin ", 140)

	caption, ok := b.formatNewsCaption(long, testArticle.URL)

	assert.Equal(t, true, ok)
	assert.Equal(t, true, utf8.RuneCountInString(caption) <= maxCaptionLength)
	assert.Equal(t, true, strings.Contains(caption, "…*"))
	assert.Equal(t, true, strings.HasSuffix(caption, "[CoinDesk](https://example.com/btc)"))
}

func TestPublishNewsSendsTextWhenCaptionCannotFit(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	article := testArticle
	article.URL = "https://example.com/" + strings.Repeat("a", 1100)

	err := b.PublishNews(context.Background(), &testSummary, &article)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(sender.sent))
	_, ok := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, true, ok)
}

func TestSourceLinkEncodesParentheses(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	text := b.formatNews(testSummary, `https://en.wikipedia.org/wiki/Bitcoin_(currency)\x y`)

	assert.Equal(t, true, strings.HasSuffix(text, "[CoinDesk](https://en.wikipedia.org/wiki/Bitcoin_%28currency%29%5Cx%20y)"))
}

func TestFormatNewsEscapesMarkdown(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	text := b.formatNews(ai.Summary{
		Title:   "*Breaking* news",
		Summary: "price_feed [beta] *up*",
		Source:  "[Decrypt]",
	}, "")

	assert.Equal(t, true, strings.Contains(text, "📰 *Breaking news*"))
	assert.Equal(t, true, strings.Contains(text, `price\_feed \[beta] \*up\*`))
	assert.Equal(t, true, strings.HasSuffix(text, "🔗 Nguồn: Decrypt"))
}

func TestPublishTrend(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	err := b.PublishTrend(context.Background(), &market.Trend{
		Direction:        market.DirectionUp,
		LatestPrice:      63000,
		PreviousPrice:    60000,
		PercentageChange: 5,
	})

	assert.Equal(t, nil, err)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Equal(t, true, strings.Contains(msg.Text, "Giá Bitcoin đang Tăng"))
	assert.Equal(t, true, strings.Contains(msg.Text, "Giá hiện tại: $63000.00, thay đổi: 5.00%"))
}

func TestPublishTrendWithoutTrendSendsNotice(t *testing.T) {
	sender := &fakeSender{}
	b := newTestBot(t, sender, "@crypto_news")

	assert.Equal(t, nil, b.PublishTrend(context.Background(), nil))
	assert.Equal(t, NoTrendNotice, sender.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestChatFor(t *testing.T) {
	assert.Equal(t, tgbotapi.BaseChat{ChatID: -100500}, chatFor("-100500"))
	assert.Equal(t, tgbotapi.BaseChat{ChannelUsername: "@news"}, chatFor("@news"))
	assert.Equal(t, tgbotapi.BaseChat{ChannelUsername: "@news"}, chatFor("news"))
}

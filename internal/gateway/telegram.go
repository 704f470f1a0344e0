// Package gateway implements the messaging gateway on the Telegram Bot API
// via telebot. Besides delivery it keeps a bounded in-memory window of
// messages it has sent and observed; the bot API exposes no history
// endpoint, so that window is what answers history queries.
package gateway

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"

	"trendcast/internal/extract"
	"trendcast/internal/publish"
)

// historyWindow bounds the per-channel message window. It comfortably covers
// both history consumers (leaderboard discovery scans 30, contract harvest
// scans 150).
const historyWindow = 200

// InboundHandler receives messages observed in watched chats.
type InboundHandler func(ctx context.Context, channelID int64, text string, entities []extract.Entity)

// Telegram is the telebot-backed Gateway implementation.
type Telegram struct {
	bot    *tele.Bot
	logger *logrus.Logger

	mu      sync.Mutex
	recent  map[string][]publish.Message // channel -> most recent first
	chatIDs map[string]int64             // @username -> resolved numeric id
}

// New connects a bot with long polling.
func New(token string, pollTimeout time.Duration, logger *logrus.Logger) (*Telegram, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:     bot,
		logger:  logger,
		recent:  make(map[string][]publish.Message),
		chatIDs: make(map[string]int64),
	}, nil
}

// OnMessage registers handler for new messages and channel posts. Every
// observed post also lands in the history window before dispatch, so the
// harvest and discovery scans see it.
func (t *Telegram) OnMessage(handler InboundHandler) {
	on := func(c tele.Context) error {
		t.dispatch(c.Message(), handler)
		return nil
	}
	t.bot.Handle(tele.OnText, on)
	t.bot.Handle(tele.OnChannelPost, on)
}

// dispatch records the message in the history window, then runs the handler
// on its own goroutine. The poller delivers updates one at a time, so a
// handler stuck on slow upstream fetches must not hold up observation of the
// next message; everything the handler touches is mutex-guarded.
func (t *Telegram) dispatch(msg *tele.Message, handler InboundHandler) {
	if msg == nil || msg.Chat == nil {
		return
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	t.remember(strconv.FormatInt(msg.Chat.ID, 10), publish.Message{ID: msg.ID, Text: text})
	if msg.Chat.Username != "" {
		t.remember("@"+msg.Chat.Username, publish.Message{ID: msg.ID, Text: text})
	}

	t.logger.WithFields(logrus.Fields{
		"chat":    msg.Chat.ID,
		"message": msg.ID,
	}).Debug("message observed")

	go handler(context.Background(), msg.Chat.ID, text, entityURLs(msg))
}

// entityURLs keeps only the structured entities extraction cares about:
// text links carrying a URL.
func entityURLs(msg *tele.Message) []extract.Entity {
	entities := msg.Entities
	if len(entities) == 0 {
		entities = msg.CaptionEntities
	}
	var out []extract.Entity
	for _, e := range entities {
		if e.Type == tele.EntityTextLink && e.URL != "" {
			out = append(out, extract.Entity{URL: e.URL})
		}
	}
	return out
}

// Start begins long polling. Blocks until Stop.
func (t *Telegram) Start() { t.bot.Start() }

// Stop ends long polling.
func (t *Telegram) Stop() { t.bot.Stop() }

// chatRecipient lets plain strings ("@channel" or a numeric id) address
// Telegram chats.
type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

// SendPhoto posts an image with an HTML caption, link previews disabled.
func (t *Telegram) SendPhoto(ctx context.Context, channel string, image []byte, captionHTML string) (int, error) {
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(image)),
		Caption: captionHTML,
	}
	msg, err := t.bot.Send(chatRecipient(channel), photo, sendOptions())
	if err != nil {
		return 0, err
	}
	t.remember(channel, publish.Message{ID: msg.ID, Text: captionHTML, Self: true})
	return msg.ID, nil
}

// EditPhoto replaces the image and caption of a previously sent message.
func (t *Telegram) EditPhoto(ctx context.Context, channel string, messageID int, image []byte, captionHTML string) error {
	chatID, err := t.resolveChatID(channel)
	if err != nil {
		return err
	}
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(image)),
		Caption: captionHTML,
	}
	ref := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	if _, err := t.bot.Edit(ref, photo, sendOptions()); err != nil {
		return err
	}
	t.rememberEdit(channel, messageID, captionHTML)
	return nil
}

// History returns up to limit messages from the in-memory window, most
// recent first.
func (t *Telegram) History(ctx context.Context, channel string, limit int) ([]publish.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := t.recent[channel]
	if limit > 0 && len(window) > limit {
		window = window[:limit]
	}
	out := make([]publish.Message, len(window))
	copy(out, window)
	return out, nil
}

func sendOptions() *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	}
}

// resolveChatID turns "@username" into the numeric chat id telebot edits
// need, caching the lookup. Numeric channel strings pass straight through.
func (t *Telegram) resolveChatID(channel string) (int64, error) {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id, nil
	}

	t.mu.Lock()
	if id, ok := t.chatIDs[channel]; ok {
		t.mu.Unlock()
		return id, nil
	}
	t.mu.Unlock()

	chat, err := t.bot.ChatByUsername(channel)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	t.chatIDs[channel] = chat.ID
	t.mu.Unlock()
	return chat.ID, nil
}

func (t *Telegram) remember(channel string, msg publish.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := append([]publish.Message{msg}, t.recent[channel]...)
	if len(window) > historyWindow {
		window = window[:historyWindow]
	}
	t.recent[channel] = window
}

// Verify interface compliance at compile time.
var _ publish.Gateway = (*Telegram)(nil)

func (t *Telegram) rememberEdit(channel string, messageID int, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := t.recent[channel]
	for i := range window {
		if window[i].ID == messageID {
			window[i].Text = text
			return
		}
	}
}

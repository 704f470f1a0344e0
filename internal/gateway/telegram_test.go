package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"trendcast/internal/extract"
	"trendcast/internal/publish"
)

// newOffline builds a Telegram with the window machinery but no live bot;
// history, bookkeeping and dispatch paths never touch the API.
func newOffline() *Telegram {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Telegram{
		logger:  logger,
		recent:  make(map[string][]publish.Message),
		chatIDs: make(map[string]int64),
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	tg := newOffline()
	tg.remember("@chan", publish.Message{ID: 1, Text: "first"})
	tg.remember("@chan", publish.Message{ID: 2, Text: "second"})
	tg.remember("@chan", publish.Message{ID: 3, Text: "third", Self: true})

	got, err := tg.History(context.Background(), "@chan", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[0].ID)
	assert.True(t, got[0].Self)
	assert.Equal(t, 1, got[2].ID)
}

func TestHistoryLimit(t *testing.T) {
	tg := newOffline()
	for i := 1; i <= 5; i++ {
		tg.remember("@chan", publish.Message{ID: i})
	}

	got, err := tg.History(context.Background(), "@chan", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].ID)
}

func TestHistoryWindowBounded(t *testing.T) {
	tg := newOffline()
	for i := 1; i <= historyWindow+50; i++ {
		tg.remember("@chan", publish.Message{ID: i, Text: fmt.Sprintf("m%d", i)})
	}

	got, err := tg.History(context.Background(), "@chan", 0)
	require.NoError(t, err)
	assert.Len(t, got, historyWindow)
	// The newest stays, the oldest fell off.
	assert.Equal(t, historyWindow+50, got[0].ID)
	assert.Equal(t, 51, got[len(got)-1].ID)
}

func TestHistoryUnknownChannelEmpty(t *testing.T) {
	tg := newOffline()
	got, err := tg.History(context.Background(), "@nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRememberEditRewritesInPlace(t *testing.T) {
	tg := newOffline()
	tg.remember("@chan", publish.Message{ID: 7, Text: "old caption", Self: true})
	tg.remember("@chan", publish.Message{ID: 8, Text: "other"})

	tg.rememberEdit("@chan", 7, "new caption")

	got, err := tg.History(context.Background(), "@chan", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new caption", got[1].Text)
	assert.True(t, got[1].Self, "an edit keeps authorship")
}

func TestResolveChatIDNumericPassthrough(t *testing.T) {
	tg := newOffline()
	id, err := tg.resolveChatID("-100123456")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123456), id)
}

func TestResolveChatIDCached(t *testing.T) {
	tg := newOffline()
	tg.chatIDs["@chan"] = -42

	id, err := tg.resolveChatID("@chan")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), id)
}

func TestDispatchDoesNotBlockOnSlowHandler(t *testing.T) {
	tg := newOffline()

	release := make(chan struct{})
	started := make(chan int, 2)
	handler := func(_ context.Context, _ int64, text string, _ []extract.Entity) {
		started <- len(text)
		<-release
	}
	defer close(release)

	msg := func(id int, text string) *tele.Message {
		return &tele.Message{ID: id, Chat: &tele.Chat{ID: -100}, Text: text}
	}

	// The poller hands updates over sequentially; the second dispatch must
	// not wait for the first handler to finish.
	tg.dispatch(msg(1, "first"), handler)
	tg.dispatch(msg(2, "second"), handler)

	got, err := tg.History(context.Background(), "-100", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2, "both messages observed before any handler returns")

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("handler did not start")
		}
	}
}

func TestDispatchRemembersCaptionText(t *testing.T) {
	tg := newOffline()
	done := make(chan string, 1)
	handler := func(_ context.Context, _ int64, text string, _ []extract.Entity) {
		done <- text
	}

	tg.dispatch(&tele.Message{ID: 1, Chat: &tele.Chat{ID: -100}, Caption: "photo caption"}, handler)

	select {
	case text := <-done:
		assert.Equal(t, "photo caption", text)
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}

	got, err := tg.History(context.Background(), "-100", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "photo caption", got[0].Text)
}

func TestDispatchNilMessageIgnored(t *testing.T) {
	tg := newOffline()
	tg.dispatch(nil, func(context.Context, int64, string, []extract.Entity) {
		t.Error("handler must not run for a nil message")
	})
	tg.dispatch(&tele.Message{ID: 1}, func(context.Context, int64, string, []extract.Entity) {
		t.Error("handler must not run without a chat")
	})
}

func TestEntityURLs(t *testing.T) {
	msg := &tele.Message{
		Entities: tele.Entities{
			{Type: tele.EntityTextLink, URL: "https://dexscreener.com/x"},
			{Type: tele.EntityURL}, // plain URL entity carries no URL field
			{Type: tele.EntityBold},
		},
	}

	got := entityURLs(msg)

	require.Len(t, got, 1)
	assert.Equal(t, "https://dexscreener.com/x", got[0].URL)
}

func TestEntityURLsFallsBackToCaptionEntities(t *testing.T) {
	msg := &tele.Message{
		CaptionEntities: tele.Entities{
			{Type: tele.EntityTextLink, URL: "https://solscan.io/x"},
		},
	}

	got := entityURLs(msg)

	require.Len(t, got, 1)
	assert.Equal(t, "https://solscan.io/x", got[0].URL)
}

func TestChatRecipient(t *testing.T) {
	assert.Equal(t, "@chan", chatRecipient("@chan").Recipient())
}

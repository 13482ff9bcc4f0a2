package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"rsi-radar/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc, mutate func(*config.TelegramConfig)) *MessageSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TelegramConfig{Enabled: true, BotToken: "TOKEN", ChatID: "-100500", APIURL: srv.URL}
	if mutate != nil {
		mutate(&cfg)
	}
	ms := NewMessageSender(cfg)
	ms.rateLimiter = NewRateLimiter(0)
	return ms
}

func TestSendTextMessage_PostsMarkdown(t *testing.T) {
	var got telegramMessage
	ms := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}, nil)

	require.NoError(t, ms.SendTextMessage(context.Background(), "`BTCUSDT`"))
	assert.Equal(t, "-100500", got.ChatID)
	assert.Equal(t, "`BTCUSDT`", got.Text)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
}

func TestSendTextMessage_APIError(t *testing.T) {
	ms := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}, nil)

	err := ms.SendTextMessage(context.Background(), "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Description, "chat not found")
}

func TestSendTextMessage_RetriesOnceAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	ms := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, nil)

	require.NoError(t, ms.SendTextMessage(context.Background(), "hi"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendTextMessage_TestModeAndDisabledSkipNetwork(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }

	testMode := newTestSender(t, handler, func(c *config.TelegramConfig) { c.TestMode = true })
	require.NoError(t, testMode.SendTextMessage(context.Background(), "hi"))

	disabled := newTestSender(t, handler, func(c *config.TelegramConfig) { c.Enabled = false })
	require.NoError(t, disabled.SendTextMessage(context.Background(), "hi"))
	assert.False(t, disabled.Enabled())

	assert.Zero(t, calls.Load())
}

func TestSendTextMessage_BadResponseBody(t *testing.T) {
	ms := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}, nil)

	assert.Error(t, ms.SendTextMessage(context.Background(), "hi"))
}

func TestPreview_KeepsRunesWhole(t *testing.T) {
	text := "📡 *RSI Radar*  ·  06-01 18:00 ━━━━━━━━━━━━━━━━ `SOLUSDT` фандинг `+0.050%`"

	got := preview(text, previewRunes)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, previewRunes, utf8.RuneCountInString(got))
	assert.Equal(t, "📡", string([]rune(got)[0]))

	assert.Equal(t, "коротко", preview("коротко", previewRunes))
}

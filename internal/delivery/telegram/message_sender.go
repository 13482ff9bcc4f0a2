// internal/delivery/telegram/message_sender.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rsi-radar/internal/infrastructure/config"
	"rsi-radar/pkg/logger"
)

const (
	defaultSendInterval = 2 * time.Second
	previewRunes        = 50
	maxRetryAfter       = 30 * time.Second
)

// MessageSender - отправитель сообщений через Bot API
type MessageSender struct {
	httpClient  *http.Client
	baseURL     string
	chatID      string
	testMode    bool
	enabled     bool
	rateLimiter *RateLimiter
}

// telegramMessage - тело sendMessage
type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// telegramResponse - ответ Bot API
type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// APIError - ошибка, которую вернул Bot API
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// NewMessageSender создает новый отправитель сообщений
func NewMessageSender(cfg config.TelegramConfig) *MessageSender {
	return &MessageSender{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     fmt.Sprintf("%s/bot%s/", cfg.APIURL, cfg.BotToken),
		chatID:      cfg.ChatID,
		testMode:    cfg.TestMode,
		enabled:     cfg.Enabled,
		rateLimiter: NewRateLimiter(defaultSendInterval),
	}
}

// Enabled - настроена ли отправка
func (ms *MessageSender) Enabled() bool {
	return ms.enabled
}

// SendTextMessage отправляет Markdown сообщение в настроенный чат
func (ms *MessageSender) SendTextMessage(ctx context.Context, text string) error {
	if !ms.enabled {
		logger.Warn("⚠️ Telegram отключен, пропуск отправки сообщения")
		return nil
	}
	if ms.testMode {
		logger.Info("[TEST] Send to %s: %s", ms.chatID, preview(text, previewRunes))
		return nil
	}

	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	message := telegramMessage{
		ChatID:                ms.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}

	err := ms.sendTelegramRequest(ctx, "sendMessage", message)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		wait := apiErr.RetryAfter
		if wait <= 0 {
			wait = 5 * time.Second
		}
		wait = min(wait, maxRetryAfter)
		logger.Warn("⚠️ Telegram API rate limit, waiting %v", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		err = ms.sendTelegramRequest(ctx, "sendMessage", message)
	}
	if err != nil {
		logger.Error("❌ Ошибка отправки сообщения: %v", err)
		return err
	}

	logger.Info("📨 Telegram: сообщение отправлено в %s", ms.chatID)
	return nil
}

// sendTelegramRequest отправляет запрос к Telegram API
func (ms *MessageSender) sendTelegramRequest(ctx context.Context, method string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ms.baseURL+method, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var telegramResp telegramResponse
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if !telegramResp.OK {
		return &APIError{
			Code:        telegramResp.ErrorCode,
			Description: telegramResp.Description,
			RetryAfter:  time.Duration(telegramResp.Parameters.RetryAfter) * time.Second,
		}
	}
	return nil
}

// preview - первые n символов текста без разрыва многобайтовых рун
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

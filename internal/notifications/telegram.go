package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramAdapter posts order announcements to a Telegram chat via the Bot
// API sendMessage method.
type TelegramAdapter struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
}

func NewTelegramAdapter(botToken, chatID string) *TelegramAdapter {
	return &TelegramAdapter{
		baseURL:    telegramAPIBase,
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewTelegramAdapterWithBase overrides the API host, for tests.
func NewTelegramAdapterWithBase(baseURL, botToken, chatID string, c *http.Client) *TelegramAdapter {
	return &TelegramAdapter{baseURL: baseURL, botToken: botToken, chatID: chatID, httpClient: c}
}

func (a *TelegramAdapter) Send(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":    a.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/bot%s/sendMessage", a.baseURL, a.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram send failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	return nil
}

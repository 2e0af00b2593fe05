package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// TelegramSender delivers notifications via the Telegram Bot API.
type TelegramSender struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token and chat.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		baseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the sender at a different Bot API host.
func (t *TelegramSender) WithBaseURL(u string) *TelegramSender {
	t.baseURL = strings.TrimRight(u, "/")
	return t
}

// Send posts a message to the chat with the title in bold.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n%s", title, message),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	return postJSON(ctx, t.client, url, body, "telegram")
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends messages to a single chat via the Bot API.
type Telegram struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithAPIBase overrides the Bot API base URL. Used in tests.
func WithAPIBase(base string) TelegramOption {
	return func(t *Telegram) {
		t.apiBase = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TelegramOption {
	return func(t *Telegram) {
		t.logger = logger
	}
}

// NewTelegram creates a notifier for one bot token and chat.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SendAlert posts a title plus detail lines as one message.
func (t *Telegram) SendAlert(ctx context.Context, title string, lines []string) error {
	var b strings.Builder
	b.WriteString("⚠️ ")
	b.WriteString(title)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return t.sendMessage(ctx, b.String())
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API rejected message: %s", apiResp.Description)
	}

	t.logger.Debug("telegram message sent", "chars", len(text))
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// DeliveryError is returned when the messaging endpoint is unreachable,
// unauthorized or responds with a non-success status. Status is 0 when
// the request never got a response.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("telegram delivery failed: %s", e.Body)
	}
	return fmt.Sprintf("telegram delivery failed: status %d: %s", e.Status, e.Body)
}

// Notifier dispatches a formatted alert message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifier posts messages to a chat via the bot sendMessage API.
// Delivery is fire-and-forget from the pipeline's perspective: no retry
// is attempted here.
type TelegramNotifier struct {
	// BaseURL defaults to the public API host; tests point it at a stub.
	BaseURL string

	botToken       string
	chatID         string
	disablePreview bool
	client         *http.Client
}

func NewTelegram(botToken, chatID string, disablePreview bool) *TelegramNotifier {
	return &TelegramNotifier{
		BaseURL:        defaultAPIBase,
		botToken:       botToken,
		chatID:         chatID,
		disablePreview: disablePreview,
		client:         &http.Client{Timeout: 20 * time.Second},
	}
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	// Config error, not a delivery error: fail fast rather than no-op.
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("missing TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID")
	}

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", strconv.FormatBool(n.disablePreview))

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.BaseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return &DeliveryError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{Status: resp.StatusCode, Body: string(body)}
	}

	return nil
}

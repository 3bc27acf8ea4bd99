package notifier

import (
	"errors"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org"
	telegramTimeout    = 10 * time.Second
)

// ErrMissingTelegramConfig is returned when TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is unset
var ErrMissingTelegramConfig = errors.New("missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID")

// TelegramNotifier sends run summaries to a Telegram chat through the Bot API
type TelegramNotifier struct {
	client   *resty.Client
	botToken string
	chatID   string
}

// NewTelegramNotifier creates a Telegram notifier from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
func NewTelegramNotifier() (*TelegramNotifier, error) {
	return newTelegramNotifier(telegramAPIBaseURL, os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"))
}

func newTelegramNotifier(baseURL, botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" || chatID == "" {
		return nil, ErrMissingTelegramConfig
	}
	return &TelegramNotifier{
		client:   resty.New().SetBaseURL(baseURL).SetTimeout(telegramTimeout),
		botToken: botToken,
		chatID:   chatID,
	}, nil
}

// telegramResponse is the envelope of every Bot API reply
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends the summary as one message
func (n *TelegramNotifier) Notify(s collector.Summary) error {
	var result telegramResponse
	resp, err := n.client.R().
		SetBody(map[string]interface{}{
			"chat_id":                  n.chatID,
			"text":                     "<pre>" + html.EscapeString(formatSummary(s)) + "</pre>",
			"parse_mode":               "HTML",
			"disable_web_page_preview": true,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + n.botToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode(), result.Description)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram fans a notification out to the parent chats. A chat that turns
// out to be permanently unreachable (bot blocked, chat deleted) is removed
// from the recipient set so it is not retried forever.
type Telegram struct {
	api *tgbotapi.BotAPI

	mu      sync.Mutex
	chatIDs []int64
}

// NewTelegramFromEnv builds the notifier from TELEGRAM_BOT_TOKEN and the
// comma-separated PARENT_CHAT_IDS.
func NewTelegramFromEnv() (*Telegram, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram client: %v", err)
	}

	var chatIDs []int64
	for _, idStr := range strings.Split(os.Getenv("PARENT_CHAT_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Printf("notify: invalid parent chat id %q, ignoring", idStr)
			continue
		}
		chatIDs = append(chatIDs, id)
	}
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("PARENT_CHAT_IDS has no valid chat ids")
	}

	return &Telegram{api: api, chatIDs: chatIDs}, nil
}

// Send delivers a title+body notification to every registered parent chat.
// Transient failures are returned for the caller to retry on its next run.
func (t *Telegram) Send(title, body string) error {
	t.mu.Lock()
	recipients := make([]int64, len(t.chatIDs))
	copy(recipients, t.chatIDs)
	t.mu.Unlock()

	var firstErr error
	for _, chatID := range recipients {
		msg := tgbotapi.NewMessage(chatID, title+"\n"+body)
		if _, err := t.api.Send(msg); err != nil {
			if permanentDeliveryError(err) {
				log.Printf("notify: dropping unreachable parent chat %d: %v", chatID, err)
				t.remove(chatID)
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to notify chat %d: %v", chatID, err)
			}
		}
	}
	return firstErr
}

func (t *Telegram) remove(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.chatIDs[:0]
	for _, id := range t.chatIDs {
		if id != chatID {
			kept = append(kept, id)
		}
	}
	t.chatIDs = kept
}

// permanentDeliveryError recognizes Telegram responses that will never
// succeed on retry.
func permanentDeliveryError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") || strings.Contains(msg, "chat not found")
}

package bot

import (
	"context"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Sender delivers outgoing Telegram messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Updater is the long-polling side of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram adapts Telegram updates to the Dispatcher and sends the replies.
type Telegram struct {
	sender     Sender
	dispatcher *Dispatcher
}

// NewTelegram creates a new Telegram adapter.
func NewTelegram(sender Sender, dispatcher *Dispatcher) *Telegram {
	return &Telegram{
		sender:     sender,
		dispatcher: dispatcher,
	}
}

// toMessage extracts a text message from an update. Non-text updates are skipped.
func toMessage(update tgbotapi.Update) (Message, bool) {
	m := update.Message
	if m == nil || m.Text == "" {
		return Message{}, false
	}

	msg := Message{
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.From != nil {
		msg.SenderName = m.From.FirstName
	}
	if m.IsCommand() {
		msg.Command = m.Command()
	}
	return msg, true
}

// HandleUpdate answers one update with exactly one reply. A panic while
// handling is contained and answered with the generic failure reply.
func (t *Telegram) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg, ok := toMessage(update)
	if !ok {
		return
	}

	reqID := uuid.NewString()
	ctx = WithRequestID(ctx, reqID)

	var text string
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ERROR: bot[%s]: panic while handling update %d: %v", reqID, update.UpdateID, r)
				text = t.dispatcher.FailureReply(r)
			}
		}()
		text = t.dispatcher.Handle(ctx, msg)
	}()

	reply := tgbotapi.NewMessage(msg.ChatID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := t.sender.Send(reply); err != nil {
		log.Printf("ERROR: bot[%s]: send reply to chat %d: %v", reqID, msg.ChatID, err)
	}
}

// Poll receives updates by long polling until ctx is cancelled. Each update
// is handled in its own goroutine; Poll waits for them before returning.
func (t *Telegram) Poll(ctx context.Context, updater Updater, timeoutSeconds int) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeoutSeconds

	updates := updater.GetUpdatesChan(cfg)
	log.Println("INFO: bot: polling for updates")

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			updater.StopReceivingUpdates()
			log.Println("INFO: bot: polling stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				t.HandleUpdate(ctx, update)
			}()
		}
	}
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ticolabs/papibot/internal/bus"
)

// Telegram adapts the Telegram Bot API to the Transport interface. Bot-token
// authentication has no pairing step, so ConnectionUpdate.PairingChallenge is
// never set by this adapter.
type Telegram struct {
	token string
	queue *bus.Queue
	bot   *tgbotapi.BotAPI

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewTelegram creates a Telegram transport publishing into the given queue.
func NewTelegram(token string, queue *bus.Queue) *Telegram {
	return &Telegram{
		token: token,
		queue: queue,
	}
}

// Start authenticates and begins the long-polling update loop.
func (t *Telegram) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("telegram transport is already running")
	}
	t.mu.Unlock()

	t.queue.PublishUpdate(bus.ConnectionUpdate{State: bus.StateConnecting})

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		t.queue.PublishUpdate(bus.ConnectionUpdate{
			State:    bus.StateClosed,
			Terminal: isAuthError(err),
			Err:      err,
		})
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	t.bot = bot

	log.Printf("[transport] authorized as @%s", bot.Self.UserName)

	ctx, cancel := context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60 // long polling

	updates := bot.GetUpdatesChan(u)

	t.mu.Lock()
	t.running = true
	t.cancel = cancel
	t.mu.Unlock()

	t.queue.PublishUpdate(bus.ConnectionUpdate{State: bus.StateOpen})

	go t.processUpdates(ctx, updates)

	return nil
}

// processUpdates drains the polling channel until the context ends or the
// channel closes underneath us.
func (t *Telegram) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				t.queue.PublishUpdate(bus.ConnectionUpdate{
					State: bus.StateClosed,
					Err:   errors.New("update stream closed"),
				})
				return
			}
			switch {
			case update.Message != nil:
				t.handleMessage(update.Message)
			case update.CallbackQuery != nil:
				t.handleCallback(update.CallbackQuery)
			}
		}
	}
}

// handleMessage decodes one Telegram message into the inbound payload union
// and publishes it. Decoding happens here and nowhere else.
func (t *Telegram) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	kind, text := decodePayload(msg)

	t.queue.PublishInbound(bus.InboundMessage{
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:  strconv.FormatInt(msg.From.ID, 10),
		MessageID: strconv.Itoa(msg.MessageID),
		FromSelf:  msg.From.ID == t.bot.Self.ID,
		FromGroup: msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
		Timestamp: msg.Time(),
		Kind:      kind,
		Text:      text,
	})
}

// handleCallback surfaces a button press as a structured-selection payload.
// The extracted text is the pressed button's title, not its opaque callback
// data.
func (t *Telegram) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	t.queue.PublishInbound(bus.InboundMessage{
		ChatID:    strconv.FormatInt(cb.Message.Chat.ID, 10),
		SenderID:  strconv.FormatInt(cb.From.ID, 10),
		MessageID: strconv.Itoa(cb.Message.MessageID),
		FromSelf:  cb.From.ID == t.bot.Self.ID,
		FromGroup: cb.Message.Chat.IsGroup() || cb.Message.Chat.IsSuperGroup(),
		Timestamp: cb.Message.Time(),
		Kind:      bus.PayloadStructuredSelection,
		Text:      selectionTitle(cb),
	})
}

// selectionTitle resolves the pressed button's title from the message's
// inline keyboard. When the keyboard is gone or no button matches, the raw
// callback data is all that is left.
func selectionTitle(cb *tgbotapi.CallbackQuery) string {
	if cb.Message != nil && cb.Message.ReplyMarkup != nil {
		for _, row := range cb.Message.ReplyMarkup.InlineKeyboard {
			for _, btn := range row {
				if btn.CallbackData != nil && *btn.CallbackData == cb.Data {
					return btn.Text
				}
			}
		}
	}
	return cb.Data
}

// decodePayload maps a message onto the payload union, in preference order:
// plain text, extended text (formatting entities or a quote), media caption.
// Everything else is unrecognized and will be dropped before classification.
func decodePayload(msg *tgbotapi.Message) (bus.PayloadKind, string) {
	switch {
	case msg.Text != "" && len(msg.Entities) == 0 && msg.ReplyToMessage == nil:
		return bus.PayloadPlainText, msg.Text
	case msg.Text != "":
		return bus.PayloadExtendedText, msg.Text
	case msg.Caption != "":
		return bus.PayloadMediaCaption, msg.Caption
	default:
		return bus.PayloadUnrecognized, ""
	}
}

// Send delivers text to a chat, optionally quoting the triggering message.
func (t *Telegram) Send(ctx context.Context, chatID, text string, quote *bus.InboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	running := t.running
	t.mu.Unlock()
	if !running {
		return fmt.Errorf("telegram transport is not running")
	}

	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", chatID, err)
	}

	out := tgbotapi.NewMessage(id, text)
	if quote != nil {
		if replyID, err := strconv.Atoi(quote.MessageID); err == nil {
			out.ReplyToMessageID = replyID
		}
	}

	if _, err := t.bot.Send(out); err != nil {
		if isAuthError(err) {
			t.queue.PublishUpdate(bus.ConnectionUpdate{
				State:    bus.StateClosed,
				Terminal: true,
				Err:      err,
			})
		}
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// ChatName resolves a chat's display name.
func (t *Telegram) ChatName(ctx context.Context, chatID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID %q: %w", chatID, err)
	}

	chat, err := t.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve chat %s: %w", chatID, err)
	}

	switch {
	case chat.Title != "":
		return chat.Title, nil
	case chat.UserName != "":
		return chat.UserName, nil
	default:
		return chat.FirstName, nil
	}
}

// Stop halts the update loop. The final Closed update is published by the
// loop itself when the polling channel drains.
func (t *Telegram) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	t.running = false
	log.Println("[transport] stopped")
	return nil
}

// isAuthError reports whether err means the credentials are rejected, in
// which case reconnecting with the same token is pointless.
func isAuthError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 401 || apiErr.Code == 403
	}
	msg := err.Error()
	return strings.Contains(msg, "Unauthorized") || strings.Contains(msg, "Forbidden")
}

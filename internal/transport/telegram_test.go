package transport

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ticolabs/papibot/internal/bus"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		msg      *tgbotapi.Message
		wantKind bus.PayloadKind
		wantText string
	}{
		{
			name:     "plain text",
			msg:      &tgbotapi.Message{Text: "Vendo 500 USDT"},
			wantKind: bus.PayloadPlainText,
			wantText: "Vendo 500 USDT",
		},
		{
			name: "text with entities",
			msg: &tgbotapi.Message{
				Text:     "Vendo 500 USDT",
				Entities: []tgbotapi.MessageEntity{{Type: "bold", Length: 5}},
			},
			wantKind: bus.PayloadExtendedText,
			wantText: "Vendo 500 USDT",
		},
		{
			name: "quoted reply",
			msg: &tgbotapi.Message{
				Text:           "sí, vendo",
				ReplyToMessage: &tgbotapi.Message{Text: "¿alguien vende?"},
			},
			wantKind: bus.PayloadExtendedText,
			wantText: "sí, vendo",
		},
		{
			name:     "media caption",
			msg:      &tgbotapi.Message{Caption: "vendo estos 500 usdt", Photo: []tgbotapi.PhotoSize{{}}},
			wantKind: bus.PayloadMediaCaption,
			wantText: "vendo estos 500 usdt",
		},
		{
			name:     "sticker without text",
			msg:      &tgbotapi.Message{Sticker: &tgbotapi.Sticker{}},
			wantKind: bus.PayloadUnrecognized,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text := decodePayload(tt.msg)
			if kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestSelectionTitle(t *testing.T) {
	data := func(s string) *string { return &s }
	keyboard := &tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Vendo 500 USDT", CallbackData: data("offer:1")},
				{Text: "Vendo 1000 USDT", CallbackData: data("offer:2")},
			},
			{
				{Text: "Cancelar", CallbackData: data("cancel")},
			},
		},
	}

	tests := []struct {
		name string
		cb   *tgbotapi.CallbackQuery
		want string
	}{
		{
			name: "matching button",
			cb: &tgbotapi.CallbackQuery{
				Data:    "offer:2",
				Message: &tgbotapi.Message{ReplyMarkup: keyboard},
			},
			want: "Vendo 1000 USDT",
		},
		{
			name: "second row",
			cb: &tgbotapi.CallbackQuery{
				Data:    "cancel",
				Message: &tgbotapi.Message{ReplyMarkup: keyboard},
			},
			want: "Cancelar",
		},
		{
			name: "no matching button",
			cb: &tgbotapi.CallbackQuery{
				Data:    "offer:9",
				Message: &tgbotapi.Message{ReplyMarkup: keyboard},
			},
			want: "offer:9",
		},
		{
			name: "keyboard removed",
			cb: &tgbotapi.CallbackQuery{
				Data:    "offer:1",
				Message: &tgbotapi.Message{},
			},
			want: "offer:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectionTitle(tt.cb); got != tt.want {
				t.Errorf("selectionTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthorized api error", &tgbotapi.Error{Code: 401, Message: "Unauthorized"}, true},
		{"forbidden api error", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was kicked"}, true},
		{"rate limited api error", &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, false},
		{"wrapped unauthorized", fmt.Errorf("getMe: %w", &tgbotapi.Error{Code: 401, Message: "Unauthorized"}), true},
		{"plain string unauthorized", errors.New("Unauthorized"), true},
		{"network error", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAuthError(tt.err); got != tt.want {
				t.Errorf("isAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSendRejectsBadChatID(t *testing.T) {
	tr := NewTelegram("token", bus.NewQueue(1))
	tr.running = true
	tr.bot = &tgbotapi.BotAPI{}

	err := tr.Send(t.Context(), "not-a-number", "hola", nil)
	if err == nil {
		t.Fatal("Send() accepted a non-numeric chat ID")
	}
}

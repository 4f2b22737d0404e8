// Package telegram adapts the Telegram Bot API to the conversation agent.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/akmal-2004/easify-seller/internal/model"
	"github.com/akmal-2004/easify-seller/pkg/logger"
)

// Handler processes one inbound event and returns the replies to send.
type Handler interface {
	Handle(ctx context.Context, in model.Inbound) []model.Outbound
}

// Bot is the long-polling Telegram channel adapter.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
	logger  *logger.Logger
	files   *http.Client

	// exchangeTimeout bounds one full inbound event, tool loop included.
	exchangeTimeout time.Duration
}

// NewBot creates the channel adapter.
func NewBot(token string, handler Handler, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Bot{
		api:             api,
		handler:         handler,
		logger:          log,
		files:           &http.Client{Timeout: 30 * time.Second},
		exchangeTimeout: 2 * time.Minute,
	}, nil
}

// Username returns the bot's Telegram username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is cancelled. Each update is
// handled on its own goroutine; per-chat ordering is enforced by the
// session lock inside the agent.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("telegram polling started", zap.String("username", b.Username()))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := b.logger.WithChat(chatID)

	ctx, cancel := context.WithTimeout(ctx, b.exchangeTimeout)
	defer cancel()

	in, err := b.toInbound(ctx, msg)
	if err != nil {
		log.Error("failed to read inbound message", zap.Error(err))
		b.sendText(chatID, "I apologize, but I had trouble reading your message. Please try again.", nil)
		return
	}

	// Typing indicator while the exchange runs.
	if in.Kind != model.InboundCommand {
		if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			log.Debug("failed to send typing action", zap.Error(err))
		}
	}

	replies := b.handler.Handle(ctx, in)
	b.send(chatID, replies, log)
}

// toInbound maps a Telegram message onto a channel event. Photo messages
// are downloaded at the highest available resolution.
func (b *Bot) toInbound(ctx context.Context, msg *tgbotapi.Message) (model.Inbound, error) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		name := msg.Command()
		switch name {
		case model.CommandStart, model.CommandHelp, model.CommandClear:
		default:
			name = model.CommandHelp
		}
		return model.Inbound{ChatID: chatID, Kind: model.InboundCommand, Command: name}, nil
	}

	if len(msg.Photo) > 0 {
		// Sizes are ordered smallest first.
		photo := msg.Photo[len(msg.Photo)-1]
		data, err := b.downloadFile(ctx, photo.FileID)
		if err != nil {
			return model.Inbound{}, fmt.Errorf("failed to download photo: %w", err)
		}
		return model.Inbound{
			ChatID: chatID,
			Kind:   model.InboundPhoto,
			Text:   msg.Caption,
			Image:  data,
		}, nil
	}

	return model.Inbound{ChatID: chatID, Kind: model.InboundText, Text: msg.Text}, nil
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.files.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// send delivers outbound events, batching consecutive photos into a media
// group of up to ten items.
func (b *Bot) send(chatID int64, replies []model.Outbound, log *logger.Logger) {
	i := 0
	for i < len(replies) {
		if !replies[i].IsPhoto() {
			b.sendTextWithFallback(chatID, replies[i].Text, keyboard(replies[i].Buttons), log)
			i++
			continue
		}

		j := i
		for j < len(replies) && replies[j].IsPhoto() && j-i < 10 {
			j++
		}
		if j-i == 1 {
			b.sendPhoto(chatID, replies[i], log)
		} else {
			b.sendMediaGroup(chatID, replies[i:j], log)
		}
		i = j
	}
}

func (b *Bot) sendPhoto(chatID int64, reply model.Outbound, log *logger.Logger) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(reply.PhotoURL))
	photo.Caption = reply.Caption
	photo.ParseMode = tgbotapi.ModeHTML
	if kb := keyboard(reply.Buttons); kb != nil {
		photo.ReplyMarkup = kb
	}

	if _, err := b.api.Send(photo); err != nil {
		log.Warn("failed to send photo, falling back to text", zap.Error(err))
		b.sendTextWithFallback(chatID, reply.Caption, keyboard(reply.Buttons), log)
	}
}

func (b *Bot) sendMediaGroup(chatID int64, replies []model.Outbound, log *logger.Logger) {
	media := make([]interface{}, 0, len(replies))
	for i, r := range replies {
		item := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(r.PhotoURL))
		if i == 0 {
			item.Caption = r.Caption
			item.ParseMode = tgbotapi.ModeHTML
		}
		media = append(media, item)
	}

	if _, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		log.Warn("failed to send media group, falling back to text", zap.Error(err))
		b.sendTextWithFallback(chatID, replies[0].Caption, nil, log)
	}
}

// sendTextWithFallback tries HTML parse mode first; Telegram rejects the
// whole message on any malformed tag, so retry stripped to plain text.
func (b *Bot) sendTextWithFallback(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup, log *logger.Logger) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Warn("HTML send failed, retrying as plain text", zap.Error(err))
	} else {
		return
	}

	plain := tgbotapi.NewMessage(chatID, StripHTML(text))
	if kb != nil {
		plain.ReplyMarkup = kb
	}
	if _, err := b.api.Send(plain); err != nil {
		log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	_, _ = b.api.Send(msg)
}

func keyboard(buttons []model.InlineButton) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

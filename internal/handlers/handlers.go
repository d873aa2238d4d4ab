package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/contextkeys"
	"github.com/BatmanBruc/handy-image-converter/internal/conversion"
	"github.com/BatmanBruc/handy-image-converter/internal/i18n"
	"github.com/BatmanBruc/handy-image-converter/internal/messages"
)

// BotAPI is the part of *bot.Bot the handlers use.
type BotAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Handlers struct {
	conv       *conversion.Handler
	httpClient *http.Client
	log        *slog.Logger
}

func NewHandlers(conv *conversion.Handler, httpClient *http.Client, log *slog.Logger) *Handlers {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Handlers{
		conv:       conv,
		httpClient: httpClient,
		log:        log.With("component", "handlers"),
	}
}

// MainHandler is registered with the bot for every message update.
func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.Handle(ctx, b, update)
}

func (bh *Handlers) Handle(ctx context.Context, api BotAPI, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	lang := langFromCtx(ctx)
	messageType, _ := contextkeys.GetMessageType(ctx)

	userID, ok := contextkeys.GetUserID(ctx)
	if !ok {
		bh.log.ErrorContext(ctx, "user id not found in context", slog.String("event", "tg.no_user"))
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), nil)
		return
	}

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, api, update)
	case contextkeys.MessageTypeDocument:
		bh.HandleDocument(ctx, api, update, userID)
	case contextkeys.MessageTypeText:
		bh.HandleText(ctx, api, update, userID)
	case contextkeys.MessageTypePhoto:
		bh.sendText(ctx, api, chatID, messages.HintSendAsFile(lang), nil)
	default:
		bh.sendText(ctx, api, chatID, messages.ErrorUnsupportedMessageType(lang), nil)
	}
}

func (bh *Handlers) sendText(ctx context.Context, api BotAPI, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := api.SendMessage(ctx, params); err != nil {
		bh.log.ErrorContext(ctx, "send message failed",
			slog.String("event", "tg.send_failed"),
			slog.Int64("chat", chatID),
			slog.String("err", err.Error()),
		)
	}
}

func langFromCtx(ctx context.Context) i18n.Lang {
	if v, ok := contextkeys.GetLang(ctx); ok {
		return i18n.Parse(v)
	}
	return i18n.EN
}

package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/contextkeys"
	"github.com/BatmanBruc/handy-image-converter/internal/i18n"
)

type Middlewares struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Middlewares {
	return &Middlewares{log: log.With("component", "tg")}
}

// Chain wraps h so that the first middleware is the outermost.
func Chain(h bot.HandlerFunc, mws ...bot.Middleware) bot.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RecoverMiddleware keeps a panicking handler from taking the poller down.
func (m *Middlewares) RecoverMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				m.log.ErrorContext(ctx, "panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.Int64("update_id", updateID(update)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		next(ctx, b, update)
	}
}

func (m *Middlewares) LoggingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		start := time.Now()
		next(ctx, b, update)

		msgType, _ := contextkeys.GetMessageType(ctx)
		userID, _ := contextkeys.GetUserID(ctx)
		m.log.DebugContext(ctx, "update handled",
			slog.String("event", "tg.update"),
			slog.Int64("update_id", updateID(update)),
			slog.Int64("user", userID),
			slog.String("type", string(msgType)),
			slog.Duration("took", time.Since(start)),
		)
	}
}

// AnalyzeMessageMiddleware classifies the message, records who sent it and
// in which language, and drops updates that carry no message.
func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update == nil || update.Message == nil {
			return
		}
		msg := update.Message

		userID := msg.Chat.ID
		lang := i18n.EN
		if msg.From != nil {
			userID = msg.From.ID
			lang = i18n.FromLanguageCode(msg.From.LanguageCode)
		}
		if userID == 0 {
			return
		}

		ctx = contextkeys.WithUserID(ctx, userID)
		ctx = contextkeys.WithLang(ctx, string(lang))
		ctx = contextkeys.WithMessageType(ctx, DetermineMessageType(msg))
		if msg.Document != nil {
			ctx = contextkeys.WithFileInfo(ctx, AnalyzeDocument(msg.Document))
		}

		next(ctx, b, update)
	}
}

func DetermineMessageType(msg *models.Message) contextkeys.MessageType {
	switch {
	case msg.Document != nil:
		return contextkeys.MessageTypeDocument
	case len(msg.Photo) > 0:
		return contextkeys.MessageTypePhoto
	case msg.Sticker != nil:
		return contextkeys.MessageTypeSticker
	case strings.HasPrefix(strings.TrimSpace(msg.Text), "/"):
		return contextkeys.MessageTypeCommand
	case msg.Text != "":
		return contextkeys.MessageTypeText
	default:
		return contextkeys.MessageTypeOther
	}
}

func AnalyzeDocument(doc *models.Document) *contextkeys.FileInfo {
	return &contextkeys.FileInfo{
		FileID:   doc.FileID,
		FileSize: int64(doc.FileSize),
		MimeType: strings.ToLower(strings.TrimSpace(doc.MimeType)),
		FileName: strings.TrimSpace(doc.FileName),
	}
}

func updateID(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	return int64(update.ID)
}

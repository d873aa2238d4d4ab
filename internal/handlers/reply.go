package handlers

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/conversion"
	"github.com/BatmanBruc/handy-image-converter/internal/formats"
	"github.com/BatmanBruc/handy-image-converter/internal/i18n"
	"github.com/BatmanBruc/handy-image-converter/internal/messages"
	"github.com/BatmanBruc/handy-image-converter/internal/utils"
)

func (bh *Handlers) sendReply(ctx context.Context, api BotAPI, chatID int64, lang i18n.Lang, reply conversion.Reply, fileName string) {
	switch reply.Outcome {
	case conversion.OutcomeChooseFormat:
		keyboard := utils.BuildReplyKeyboard(formats.Labels(reply.Options), len(reply.Options))
		bh.sendText(ctx, api, chatID, messages.SelectOutputFormat(lang, fileName), keyboard)
	case conversion.OutcomeUnsupportedSource:
		bh.sendText(ctx, api, chatID, messages.ErrorUnsupportedFormat(lang, formats.SupportedList()), nil)
	case conversion.OutcomeUnsupportedTarget:
		bh.sendText(ctx, api, chatID, messages.ErrorUnsupportedFormat(lang, formats.SupportedList()), utils.RemoveKeyboard())
	case conversion.OutcomeAlreadyThisFormat:
		bh.sendText(ctx, api, chatID, messages.ErrorAlreadyThisFormat(lang), utils.RemoveKeyboard())
	case conversion.OutcomeConverted:
		bh.sendDocument(ctx, api, chatID, lang, reply.Document)
	default:
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), nil)
	}
}

func (bh *Handlers) sendDocument(ctx context.Context, api BotAPI, chatID int64, lang i18n.Lang, doc *conversion.Document) {
	if doc == nil {
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), nil)
		return
	}
	defer func() {
		if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
			bh.log.WarnContext(ctx, "remove result file failed",
				slog.String("event", "conversion.cleanup_failed"),
				slog.String("path", doc.Path),
				slog.String("err", err.Error()),
			)
		}
	}()

	file, err := os.Open(doc.Path)
	if err != nil {
		bh.log.ErrorContext(ctx, "open result file failed", slog.String("event", "tg.send_failed"), slog.String("err", err.Error()))
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), utils.RemoveKeyboard())
		return
	}
	defer file.Close()

	_, err = api.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: doc.FileName,
			Data:     file,
		},
		Caption:     messages.Converted(lang, doc.FileName),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: utils.RemoveKeyboard(),
	})
	if err != nil {
		bh.log.ErrorContext(ctx, "send document failed",
			slog.String("event", "tg.send_failed"),
			slog.Int64("chat", chatID),
			slog.String("file", doc.FileName),
			slog.String("err", err.Error()),
		)
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), utils.RemoveKeyboard())
	}
}

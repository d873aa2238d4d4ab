package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/messages"
	"github.com/BatmanBruc/handy-image-converter/internal/utils"
)

// HandleText treats every plain text message as the answer to "which format?".
func (bh *Handlers) HandleText(ctx context.Context, api BotAPI, update *models.Update, userID int64) {
	lang := langFromCtx(ctx)
	chatID := update.Message.Chat.ID

	reply, err := bh.conv.ReceiveTargetFormat(ctx, userID, update.Message.Text)
	if err != nil {
		bh.log.ErrorContext(ctx, "conversion failed",
			slog.String("event", "conversion.target_failed"),
			slog.Int64("user", userID),
			slog.String("err", err.Error()),
		)
		bh.sendText(ctx, api, chatID, messages.ErrorConversionFailed(lang), utils.RemoveKeyboard())
		return
	}

	bh.sendReply(ctx, api, chatID, lang, reply, "")
}

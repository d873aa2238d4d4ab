package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/formats"
	"github.com/BatmanBruc/handy-image-converter/internal/messages"
)

func (bh *Handlers) HandleCommand(ctx context.Context, api BotAPI, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := update.Message.Chat.ID
	fields := strings.Fields(update.Message.Text)
	if len(fields) == 0 {
		return
	}
	cmd := fields[0]
	if strings.Contains(cmd, "@") {
		cmd = strings.SplitN(cmd, "@", 2)[0]
	}

	switch strings.ToLower(cmd) {
	case "/start":
		bh.sendText(ctx, api, chatID, messages.StartWelcome(lang), nil)
	case "/help":
		bh.sendText(ctx, api, chatID, formats.GetHelpMessage(lang), nil)
	default:
		bh.sendText(ctx, api, chatID, messages.ErrorUnknownCommand(lang), nil)
	}
}

package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/handy-image-converter/internal/contextkeys"
	"github.com/BatmanBruc/handy-image-converter/internal/messages"
)

func (bh *Handlers) HandleDocument(ctx context.Context, api BotAPI, update *models.Update, userID int64) {
	lang := langFromCtx(ctx)
	chatID := update.Message.Chat.ID

	info, ok := contextkeys.GetFileInfo(ctx)
	if !ok {
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), nil)
		return
	}

	source := &telegramFile{api: api, fileID: info.FileID, httpClient: bh.httpClient}
	reply, err := bh.conv.ReceiveSource(ctx, userID, info.MimeType, source, info.FileName)
	if err != nil {
		bh.log.ErrorContext(ctx, "receive source failed",
			slog.String("event", "conversion.source_failed"),
			slog.Int64("user", userID),
			slog.String("file_id", info.FileID),
			slog.String("err", err.Error()),
		)
		bh.sendText(ctx, api, chatID, messages.ErrorDefault(lang), nil)
		return
	}

	bh.sendReply(ctx, api, chatID, lang, reply, info.FileName)
}

// telegramFile downloads a document through the Bot API file endpoint.
type telegramFile struct {
	api        BotAPI
	fileID     string
	httpClient *http.Client
}

func (f *telegramFile) Fetch(ctx context.Context, w io.Writer) error {
	file, err := f.api.GetFile(ctx, &bot.GetFileParams{FileID: f.fileID})
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.api.FileDownloadLink(file), nil)
	if err != nil {
		return err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

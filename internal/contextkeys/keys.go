package contextkeys

import "context"

type messageTypeKey struct{}
type fileInfoKey struct{}
type userIDKey struct{}
type langKey struct{}

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeCommand  MessageType = "command"
	MessageTypeDocument MessageType = "document"
	MessageTypePhoto    MessageType = "photo"
	MessageTypeSticker  MessageType = "sticker"
	MessageTypeOther    MessageType = "other"
	MessageTypeUnknown  MessageType = "unknown"
)

// FileInfo describes a document attached to a message.
type FileInfo struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v, ok := ctx.Value(messageTypeKey{}).(MessageType)
	if !ok {
		return MessageTypeUnknown, false
	}
	return v, true
}

func WithFileInfo(ctx context.Context, info *FileInfo) context.Context {
	return context.WithValue(ctx, fileInfoKey{}, info)
}

func GetFileInfo(ctx context.Context) (*FileInfo, bool) {
	v, ok := ctx.Value(fileInfoKey{}).(*FileInfo)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey{}).(int64)
	return v, ok
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func GetLang(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(langKey{}).(string)
	return v, ok
}

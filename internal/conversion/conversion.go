// Package conversion implements the two-step conversation: a user sends an
// image document, the bot offers the other formats, the user names one and
// gets the converted file back.
package conversion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/BatmanBruc/handy-image-converter/internal/converter"
	"github.com/BatmanBruc/handy-image-converter/internal/formats"
	"github.com/BatmanBruc/handy-image-converter/types"
)

type Outcome string

const (
	OutcomeChooseFormat      Outcome = "choose_format"
	OutcomeUnsupportedSource Outcome = "unsupported_source"
	OutcomeUnsupportedTarget Outcome = "unsupported_target"
	OutcomeAlreadyThisFormat Outcome = "already_this_format"
	OutcomeConverted         Outcome = "converted"
)

// FileSource delivers the bytes of a received document. It is only called
// once the declared MIME type has been accepted.
type FileSource interface {
	Fetch(ctx context.Context, w io.Writer) error
}

// FileSourceFunc adapts a function to FileSource.
type FileSourceFunc func(ctx context.Context, w io.Writer) error

func (f FileSourceFunc) Fetch(ctx context.Context, w io.Writer) error { return f(ctx, w) }

// Document is a converted file ready to be sent. Path is the scratch file,
// FileName is the name the user sees.
type Document struct {
	Path     string
	FileName string
}

type Reply struct {
	Outcome Outcome
	// Source is the detected source format (ChooseFormat, AlreadyThisFormat, Converted).
	Source formats.Format
	// Target is the requested format when it was recognised.
	Target formats.Format
	// Options are the quick-reply choices, set only for ChooseFormat.
	Options []formats.Format
	// Document is set only for Converted.
	Document *Document
	// HadPending reports whether a pending conversion was consumed.
	HadPending bool
}

type Handler struct {
	store      types.ConversationStore
	converter  converter.Converter
	scratchDir string
	log        *slog.Logger
}

func NewHandler(store types.ConversationStore, conv converter.Converter, scratchDir string, log *slog.Logger) (*Handler, error) {
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "handy_image_converter")
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		store:      store,
		converter:  conv,
		scratchDir: scratchDir,
		log:        log.With("component", "conversion"),
	}, nil
}

func (h *Handler) ScratchDir() string { return h.scratchDir }

// ReceiveSource handles an incoming document. Unsupported MIME types are
// answered without touching the store or downloading anything.
func (h *Handler) ReceiveSource(ctx context.Context, userKey int64, mimeType string, src FileSource, displayName string) (Reply, error) {
	source, ok := formats.FromMimeType(mimeType)
	if !ok {
		h.log.DebugContext(ctx, "unsupported source",
			slog.String("event", "conversion.rejected"),
			slog.Int64("user", userKey),
			slog.String("mime", mimeType),
		)
		return Reply{Outcome: OutcomeUnsupportedSource}, nil
	}

	path := filepath.Join(h.scratchDir, uuid.NewString()+"."+source.Ext())
	if err := h.download(ctx, src, path); err != nil {
		return Reply{}, err
	}

	// A new document replaces an unfinished conversion; its file goes too.
	if previous, ok, err := h.store.TakeAndClear(ctx, userKey); err != nil {
		_ = os.Remove(path)
		return Reply{}, fmt.Errorf("clear previous pending conversion: %w", err)
	} else if ok {
		removeQuietly(previous.SourcePath)
	}

	pending := types.PendingConversion{
		SourcePath:   path,
		OriginalName: baseName(displayName),
	}
	if err := h.store.Put(ctx, userKey, pending); err != nil {
		_ = os.Remove(path)
		return Reply{}, fmt.Errorf("store pending conversion: %w", err)
	}

	h.log.InfoContext(ctx, "source received",
		slog.String("event", "conversion.received"),
		slog.Int64("user", userKey),
		slog.String("format", source.String()),
		slog.String("name", pending.OriginalName),
	)

	return Reply{
		Outcome: OutcomeChooseFormat,
		Source:  source,
		Options: formats.TargetsFor(source),
	}, nil
}

// ReceiveTargetFormat consumes the pending conversion for userKey whatever
// the answer is. Without a pending conversion the reply is
// OutcomeUnsupportedTarget with HadPending false.
func (h *Handler) ReceiveTargetFormat(ctx context.Context, userKey int64, requested string) (Reply, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))

	pending, ok, err := h.store.TakeAndClear(ctx, userKey)
	if err != nil {
		return Reply{}, fmt.Errorf("take pending conversion: %w", err)
	}
	if !ok {
		return Reply{Outcome: OutcomeUnsupportedTarget}, nil
	}
	defer removeQuietly(pending.SourcePath)

	target, ok := formats.Parse(requested)
	if !ok {
		return Reply{Outcome: OutcomeUnsupportedTarget, HadPending: true}, nil
	}

	source, _ := formats.FromExtension(filepath.Ext(pending.SourcePath))
	if target == source {
		return Reply{Outcome: OutcomeAlreadyThisFormat, Source: source, Target: target, HadPending: true}, nil
	}

	outPath := strings.TrimSuffix(pending.SourcePath, filepath.Ext(pending.SourcePath)) + "." + target.Ext()
	if err := h.converter.Convert(ctx, pending.SourcePath, outPath, target); err != nil {
		h.log.ErrorContext(ctx, "conversion failed",
			slog.String("event", "conversion.failed"),
			slog.Int64("user", userKey),
			slog.String("from", source.String()),
			slog.String("to", target.String()),
			slog.String("err", err.Error()),
		)
		return Reply{}, fmt.Errorf("convert %s to %s: %w", source, target, err)
	}

	h.log.InfoContext(ctx, "conversion done",
		slog.String("event", "conversion.done"),
		slog.Int64("user", userKey),
		slog.String("from", source.String()),
		slog.String("to", target.String()),
	)

	return Reply{
		Outcome:    OutcomeConverted,
		Source:     source,
		Target:     target,
		HadPending: true,
		Document: &Document{
			Path:     outPath,
			FileName: pending.OriginalName + "." + target.Ext(),
		},
	}, nil
}

func (h *Handler) download(ctx context.Context, src FileSource, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	if err := src.Fetch(ctx, out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("fetch source: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// baseName strips directories and the last extension from a display name.
func baseName(displayName string) string {
	name := filepath.Base(strings.TrimSpace(displayName))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "image"
	}
	return name
}

func removeQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

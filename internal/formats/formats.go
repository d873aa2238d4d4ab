package formats

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/handy-image-converter/internal/i18n"
	"github.com/BatmanBruc/handy-image-converter/internal/messages"
)

// Format is one of the image formats the bot converts between. The value is
// the lower-case name, which is also the file extension.
type Format string

const (
	AVIF Format = "avif"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WEBP Format = "webp"
)

// All lists the supported formats in canonical order.
var All = []Format{AVIF, JPEG, PNG, WEBP}

var mimeToFormat = map[string]Format{
	"image/avif": AVIF,
	"image/jpeg": JPEG,
	"image/png":  PNG,
	"image/webp": WEBP,
}

func (f Format) String() string { return string(f) }

// Ext is the extension used for scratch and output files.
func (f Format) Ext() string { return string(f) }

// Label is the keyboard button text.
func (f Format) Label() string { return strings.ToUpper(string(f)) }

func (f Format) MimeType() string { return "image/" + string(f) }

// Parse matches s against the supported formats, ignoring case and
// surrounding spaces.
func Parse(s string) (Format, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range All {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// FromMimeType maps a declared MIME type such as "image/png" to a Format.
// Parameters after ';' are ignored.
func FromMimeType(mimeType string) (Format, bool) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if base, _, found := strings.Cut(mimeType, ";"); found {
		mimeType = strings.TrimSpace(base)
	}
	f, ok := mimeToFormat[mimeType]
	return f, ok
}

// FromExtension maps a file extension (with or without the dot) to a Format.
// "jpg" is treated as JPEG.
func FromExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpg" {
		ext = "jpeg"
	}
	return Parse(ext)
}

// TargetsFor returns every supported format except source, in canonical order.
func TargetsFor(source Format) []Format {
	targets := make([]Format, 0, len(All)-1)
	for _, f := range All {
		if f != source {
			targets = append(targets, f)
		}
	}
	return targets
}

func Labels(list []Format) []string {
	labels := make([]string, 0, len(list))
	for _, f := range list {
		labels = append(labels, f.Label())
	}
	return labels
}

// SupportedList renders "avif/jpeg/png/webp".
func SupportedList() string {
	names := make([]string, 0, len(All))
	for _, f := range All {
		names = append(names, string(f))
	}
	return strings.Join(names, "/")
}

func GetHelpMessage(lang i18n.Lang) string {
	var msg strings.Builder
	msg.WriteString(messages.HelpHeader(lang))
	msg.WriteString("\n")
	for _, f := range All {
		msg.WriteString(fmt.Sprintf("• <b>%s</b> <code>%s</code>\n", f.Label(), messages.Escape(f.MimeType())))
	}
	msg.WriteString("\n")
	msg.WriteString(messages.HelpUsage(lang))
	return msg.String()
}

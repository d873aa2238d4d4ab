package messages

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/handy-image-converter/internal/i18n"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func FileLine(lang i18n.Lang, fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		name = i18n.Pick(lang, "image", "изображение")
	}
	return fmt.Sprintf("📄 <b>%s</b> %s", i18n.Pick(lang, "File:", "Файл:"), Escape(name))
}

func StartWelcome(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"👋 <b>Hi!</b>\n\nI'm HandyImageConverterBot!\n\n"+
			"📎 Send me an image <b>as a file</b> and pick the output format.",
		"👋 <b>Привет!</b>\n\nЯ HandyImageConverterBot!\n\n"+
			"📎 Отправьте изображение <b>файлом</b> и выберите формат.",
	)
}

func HelpHeader(lang i18n.Lang) string {
	return i18n.Pick(lang, "ℹ️ <b>Supported formats</b>\n", "ℹ️ <b>Поддерживаемые форматы</b>\n")
}

func HelpUsage(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"🧭 <b>Usage</b>\n1) Send an image as a file\n2) Pick the output format on the keyboard\n3) Get the converted file",
		"🧭 <b>Использование</b>\n1) Отправьте изображение файлом\n2) Выберите формат на клавиатуре\n3) Получите готовый файл",
	)
}

func SelectOutputFormat(lang i18n.Lang, fileName string) string {
	return i18n.Pick(lang, "📥 <b>Select the output format</b>\n", "📥 <b>Выберите формат</b>\n") + FileLine(lang, fileName)
}

func ErrorUnsupportedFormat(lang i18n.Lang, supported string) string {
	return i18n.Pick(lang,
		"🚫 <b>Error! Unsupported image format!</b>\n\nI support only <code>"+Escape(supported)+"</code> images at the moment.",
		"🚫 <b>Ошибка! Неподдерживаемый формат!</b>\n\nСейчас я умею работать только с <code>"+Escape(supported)+"</code>.",
	)
}

func ErrorAlreadyThisFormat(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"⚠️ <b>The image is already in this format</b>",
		"⚠️ <b>Изображение уже в этом формате</b>",
	)
}

func Converted(lang i18n.Lang, fileName string) string {
	return i18n.Pick(lang, "✅ <b>Done</b>\n", "✅ <b>Готово</b>\n") + FileLine(lang, fileName)
}

func HintSendAsFile(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"🖼 <b>Send the image as a file</b>\nCompressed photos lose their original format.",
		"🖼 <b>Отправьте изображение файлом</b>\nСжатые фото теряют исходный формат.",
	)
}

func ErrorDefault(lang i18n.Lang) string {
	return i18n.Pick(lang, "🚫 <b>Error</b>\nPlease try again.", "🚫 <b>Ошибка</b>\nПопробуйте ещё раз.")
}

func ErrorUnsupportedMessageType(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"🤖 <b>I can't do that</b>\nSend me an image as a file.",
		"🤖 <b>Я так не умею</b>\nОтправьте изображение файлом.",
	)
}

func ErrorUnknownCommand(lang i18n.Lang) string {
	return i18n.Pick(lang, "❓ <b>Unknown command</b>", "❓ <b>Команда не найдена</b>")
}

func ErrorConversionFailed(lang i18n.Lang) string {
	return i18n.Pick(lang,
		"🚫 <b>Conversion failed</b>\nThe file could not be read as an image.",
		"🚫 <b>Ошибка конвертации</b>\nНе удалось прочитать файл как изображение.",
	)
}

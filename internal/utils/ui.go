package utils

import (
	"github.com/go-telegram/bot/models"
)

// BuildReplyKeyboard lays labels out as reply keyboard rows of at most
// perRow buttons.
func BuildReplyKeyboard(labels []string, perRow int) *models.ReplyKeyboardMarkup {
	if perRow <= 0 {
		perRow = len(labels)
	}
	rows := make([][]models.KeyboardButton, 0)
	row := make([]models.KeyboardButton, 0, perRow)
	for i, label := range labels {
		if i > 0 && i%perRow == 0 {
			rows = append(rows, row)
			row = make([]models.KeyboardButton, 0, perRow)
		}
		row = append(row, models.KeyboardButton{Text: label})
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func RemoveKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}

package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
)

// Keyboard builders for every menu the bot shows. Labels come from the
// localizer; callback data values are stable identifiers handled in
// handleCallbackQuery.

func mainMenuKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "start_chatting"), "start_search"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_interest"), "set_interest"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_language"), "set_language"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_help"), "help"),
		),
	)
}

func chatKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_end_chat"), "stop_chat"),
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_next_partner"), "next_partner"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_report"), "report_menu"),
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_block"), "block_partner"),
		),
	)
}

func queueKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_cancel_search"), "cancel_search"),
		),
	)
}

func captchaKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "i_am_human"), "captcha_solved"),
		),
	)
}

func interestKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, interest := range config.Interests {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(interest, "interest_"+interest))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_back"), "main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reportKeyboard(l *localization.Localizer, lang string) tgbotapi.InlineKeyboardMarkup {
	reasons := []string{"Spam", "Abuse", "Inappropriate", "Other"}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, reason := range reasons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(reason, "report_"+reason),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(l.GetString(lang, "btn_back"), "back_to_chat"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", "lang_en"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇱🇰 සිංහල", "lang_si"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "main_menu"),
		),
	)
}

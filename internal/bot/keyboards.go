package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки нижней панели
const (
	btnCalc     = "Калькулятор"
	btnDraft    = "Мой заказ"
	btnContact  = "Связаться"
	btnParts    = "Детали"
	btnServices = "Услуги"
	btnPrices   = "Прайс-лист"
	btnOrders   = "Заявки"
)

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func customerReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnCalc)},
			{tgbotapi.NewKeyboardButton(btnDraft), tgbotapi.NewKeyboardButton(btnContact)},
		},
	}
}

// adminReplyKeyboard Нижняя панель (ReplyKeyboard) для админа
func adminReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnCalc), tgbotapi.NewKeyboardButton(btnDraft)},
			{tgbotapi.NewKeyboardButton(btnParts), tgbotapi.NewKeyboardButton(btnServices)},
			{tgbotapi.NewKeyboardButton(btnPrices), tgbotapi.NewKeyboardButton(btnOrders)},
		},
	}
}

func checkoutConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Отправить", "co:send"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить контакты", "co:edit"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func skipKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Пропустить", data),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

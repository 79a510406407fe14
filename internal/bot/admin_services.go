package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/orders"
)

func (b *Bot) showServicesAdmin(ctx context.Context, chatID int64, editMsgID *int) {
	items, err := b.catalog.ListServices(ctx)
	if err != nil {
		b.log.Error("list services failed", "err", err)
		b.show(chatID, editMsgID, "Ошибка загрузки услуг", navKeyboard(false, true))
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, s := range items {
		label := fmt.Sprintf("%s %s — %s", badge(s.IsActive), s.Name, orders.Money(s.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "adm:svc:"+s.ID)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("➕ Добавить услугу", "adm:svc:add")),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	mid := b.show(chatID, editMsgID, "Дополнительные услуги:", tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid})
}

func (b *Bot) showServiceCard(ctx context.Context, chatID int64, editMsgID *int, id string) {
	s, err := b.catalog.ServiceByID(ctx, id)
	if err != nil {
		b.showServicesAdmin(ctx, chatID, editMsgID)
		return
	}

	// Переключатель активности
	toggle := "🙈 Скрыть"
	if !s.IsActive {
		toggle = "👁 Показать"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✏️ Название", "adm:vf:name:"+id),
			btn("💰 Цена", "adm:vf:price:"+id),
			btn("🔢 Порядок", "adm:vf:order:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(btn(toggle, "adm:svc:tg:"+id), btn("🗑 Удалить", "adm:svc:del:"+id)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К услугам", "adm:svcs")),
	)

	text := fmt.Sprintf("Услуга: %s %s\nЦена: %s за позицию\nПорядок: %d",
		badge(s.IsActive), s.Name, orders.Money(s.Price), s.Order)
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid})
}

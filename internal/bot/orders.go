package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/orders"
)

const inboxLimit = 20

// Notifier отправляет новые заявки в админский чат.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(api *tgbotapi.BotAPI, adminChatID int64) *Notifier {
	return &Notifier{api: api, chatID: adminChatID}
}

func (n *Notifier) Notify(_ context.Context, o orders.Order) error {
	m := tgbotapi.NewMessage(n.chatID, orders.RenderOrder(o))
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("✅ Обработано", "ord:done:"+o.ID.String())),
	)
	if _, err := n.api.Send(m); err != nil {
		return fmt.Errorf("send order %s to admin chat: %w", o.ID, err)
	}
	return nil
}

/*** Входящие заявки ***/

func (b *Bot) showInbox(ctx context.Context, chatID int64, editMsgID *int, all bool) {
	status := orders.StatusNew
	title := "Новые заявки:"
	toggle := btn("📚 Все заявки", "ord:list:all")
	if all {
		status, title = "", "Последние заявки:"
		toggle = btn("📩 Только новые", "ord:list:new")
	}

	list, err := b.orders.Inbox(ctx, status, inboxLimit)
	if err != nil {
		b.log.Error("load inbox failed", "err", err)
		b.show(chatID, editMsgID, "Ошибка загрузки заявок", navKeyboard(false, true))
		return
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, o := range list {
		mark := "📩"
		if o.Status == orders.StatusProcessed {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s %s", mark, o.CreatedAt.Local().Format("02.01 15:04"), o.Name)
		if !o.Total.IsZero() {
			label += " · " + orders.Money(o.Total)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "ord:"+o.ID.String())))
	}
	if len(list) == 0 {
		title = "Заявок нет."
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(toggle), navKeyboard(false, true).InlineKeyboard[0])

	mid := b.show(chatID, editMsgID, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid})
}

func (b *Bot) showOrderCard(ctx context.Context, chatID int64, editMsgID *int, id uuid.UUID) {
	o, err := b.orders.Order(ctx, id)
	if err != nil {
		if !errors.Is(err, orders.ErrNotFound) {
			b.log.Error("load order failed", "id", id, "err", err)
		}
		b.show(chatID, editMsgID, "Заявка не найдена", navKeyboard(false, true))
		return
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	text := orders.RenderOrder(*o)
	if o.Status == orders.StatusProcessed {
		text += "\n\n✅ Обработана"
		if o.ProcessedAt != nil {
			text += " " + o.ProcessedAt.Local().Format("02.01.2006 15:04")
		}
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("✅ Обработано", "ord:done:"+id.String())))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ К заявкам", "ord:list:new")))
	b.show(chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleOrdersCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID

	switch cb.Data {
	case "ord:list:all":
		_ = b.answerCallback(cb, "", false)
		b.showInbox(ctx, chatID, &mid, true)
		return
	case "ord:list:new":
		_ = b.answerCallback(cb, "", false)
		b.showInbox(ctx, chatID, &mid, false)
		return
	}

	if s, ok := cutPrefix(cb.Data, "ord:done:"); ok {
		id, err := uuid.Parse(s)
		if err != nil {
			_ = b.answerCallback(cb, "Некорректная заявка", false)
			return
		}
		if err := b.orders.MarkProcessed(ctx, id); err != nil && !errors.Is(err, orders.ErrNotFound) {
			b.log.Error("mark order processed failed", "id", id, "err", err)
			_ = b.answerCallback(cb, "Ошибка сохранения", true)
			return
		}
		_ = b.answerCallback(cb, "Отмечено", false)
		b.showOrderCard(ctx, chatID, &mid, id)
		return
	}

	if s, ok := cutPrefix(cb.Data, "ord:"); ok {
		id, err := uuid.Parse(s)
		if err != nil {
			_ = b.answerCallback(cb, "Некорректная заявка", false)
			return
		}
		_ = b.answerCallback(cb, "", false)
		b.showOrderCard(ctx, chatID, &mid, id)
	}
}

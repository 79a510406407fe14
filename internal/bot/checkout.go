package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

const keyContact = "contact" // заявка «Связаться» без черновика

// renderDraftView — черновик заказа с кнопками правки позиций.
func renderDraftView(w *wizard.Wizard) (string, tgbotapi.InlineKeyboardMarkup) {
	draft := w.Draft()
	rows := [][]tgbotapi.InlineKeyboardButton{}

	if len(draft) == 0 {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("🧮 Открыть калькулятор", "calc:open")),
			navKeyboard(false, true).InlineKeyboard[0],
		)
		return "Заказ пока пуст. Соберите позицию в калькуляторе.", tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	text := orders.RenderDraft(wizard.Submission{Selections: draft, TotalPrice: w.Total()})
	for i, s := range draft {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("➖", fmt.Sprintf("draft:dec:%d", i)),
			btn(fmt.Sprintf("%d. %d шт.", i+1, s.Quantity), "calc:noop"),
			btn("➕", fmt.Sprintf("draft:inc:%d", i)),
			btn("🗑", fmt.Sprintf("draft:rm:%d", i)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("➕ Ещё позиция", "calc:open"), btn("🧹 Очистить", "draft:clear")),
		tgbotapi.NewInlineKeyboardRow(btn("✅ Оформить заказ", "draft:checkout")),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// applyDraftAction — правка черновика по callback data «draft:*».
func applyDraftAction(w *wizard.Wizard, data string) error {
	if s, ok := cutPrefix(data, "draft:rm:"); ok {
		return w.RemoveSelection(atoiDefault(s, -1))
	}
	for _, p := range []struct {
		prefix string
		delta  int
	}{{"draft:inc:", 1}, {"draft:dec:", -1}} {
		if s, ok := cutPrefix(data, p.prefix); ok {
			i := atoiDefault(s, -1)
			draft := w.Draft()
			if i < 0 || i >= len(draft) {
				return wizard.ErrIndex
			}
			return w.UpdateSelectionQuantity(i, draft[i].Quantity+p.delta)
		}
	}
	switch data {
	case "draft:clear":
		w.ClearDraft()
		return nil
	case "draft:show":
		return nil
	}
	return fmt.Errorf("unknown draft action %q", data)
}

func (b *Bot) showDraft(ctx context.Context, chatID int64, editMsgID *int) {
	st := b.getState(ctx, chatID)
	w, err := b.loadWizard(ctx, st)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Каталог временно недоступен, попробуйте позже."))
		return
	}
	text, kb := renderDraftView(w)
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateCalc, withWizard(dialog.Payload{dialog.KeyMsgID: mid}, w))
}

func (b *Bot) handleDraftCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	if cb.Data == "draft:checkout" {
		_ = b.answerCallback(cb, "", false)
		b.startCheckout(ctx, chatID, cb.From.ID, &cb.Message.MessageID, false)
		return
	}

	st := b.getState(ctx, chatID)
	w, err := b.loadWizard(ctx, st)
	if err != nil {
		_ = b.answerCallback(cb, "Каталог временно недоступен", true)
		return
	}
	if err := applyDraftAction(w, cb.Data); err != nil {
		b.log.Debug("draft action rejected", "data", cb.Data, "err", err)
	}
	_ = b.answerCallback(cb, "", false)

	text, kb := renderDraftView(w)
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID, text, kb))
	b.setState(ctx, chatID, dialog.StateCalc, withWizard(dialog.Payload{dialog.KeyMsgID: cb.Message.MessageID}, w))
}

/*** Оформление ***/

// startCheckout спрашивает недостающие контакты. Сохранённые с прошлой
// заявки имя и телефон подставляются сразу.
func (b *Bot) startCheckout(ctx context.Context, chatID, tgID int64, editMsgID *int, contact bool) {
	st := b.getState(ctx, chatID)
	if !contact {
		w, err := b.loadWizard(ctx, st)
		if err != nil || len(w.Draft()) == 0 {
			b.show(chatID, editMsgID, "Заказ пуст, добавьте позиции в калькуляторе.", navKeyboard(false, true))
			return
		}
	}

	p := dialog.Payload{keyContact: contact}
	if u, _ := b.users.GetByTelegramID(ctx, tgID); u != nil && u.Phone != "" {
		p = p.With(dialog.KeyName, u.DisplayName(), dialog.KeyPhone, u.Phone)
		b.askComment(ctx, chatID, editMsgID, p)
		return
	}

	b.show(chatID, editMsgID, "Как к вам обращаться? Напишите имя сообщением.", navKeyboard(false, true))
	b.setState(ctx, chatID, dialog.StateCheckoutName, p)
}

func (b *Bot) askComment(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	contact, _ := p[keyContact].(bool)
	if contact {
		b.show(chatID, editMsgID, "Напишите ваш вопрос одним сообщением.", navKeyboard(false, true))
	} else {
		b.show(chatID, editMsgID, "Добавьте комментарий к заказу (например, удобное время звонка) или нажмите «Пропустить».", skipKeyboard("co:skip"))
	}
	b.setState(ctx, chatID, dialog.StateCheckoutComment, p)
}

func (b *Bot) showCheckoutConfirm(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	name, _ := dialog.GetString(p, dialog.KeyName)
	phone, _ := dialog.GetString(p, dialog.KeyPhone)
	comment, _ := dialog.GetString(p, dialog.KeyComment)
	contact, _ := p[keyContact].(bool)

	var sb strings.Builder
	if !contact {
		st := b.getState(ctx, chatID)
		w, err := b.loadWizard(ctx, st)
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Каталог временно недоступен, попробуйте позже."))
			return
		}
		sb.WriteString(orders.RenderDraft(wizard.Submission{Selections: w.Draft(), TotalPrice: w.Total()}))
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Имя: %s\nТелефон: %s", name, phone)
	if comment != "" {
		fmt.Fprintf(&sb, "\nКомментарий: %s", comment)
	}
	sb.WriteString("\n\nОтправить заявку?")

	mid := b.show(chatID, editMsgID, sb.String(), checkoutConfirmKeyboard())
	b.setState(ctx, chatID, dialog.StateCheckoutConfirm, p.With(dialog.KeyMsgID, mid))
}

func (b *Bot) handleCheckoutText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch st.State {
	case dialog.StateCheckoutName:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Имя не может быть пустым. Напишите имя сообщением."))
			return
		}
		b.sendText(chatID, "Укажите телефон для связи, например +7 921 555-12-34.", navKeyboard(false, true))
		b.setState(ctx, chatID, dialog.StateCheckoutPhone, st.Payload.With(dialog.KeyName, text))

	case dialog.StateCheckoutPhone:
		if !orders.ValidPhone(text) {
			b.send(tgbotapi.NewMessage(chatID, "Не похоже на номер телефона. Пример: +7 921 555-12-34."))
			return
		}
		b.askComment(ctx, chatID, nil, st.Payload.With(dialog.KeyPhone, text))

	case dialog.StateCheckoutComment:
		if text == "" {
			b.send(tgbotapi.NewMessage(chatID, "Напишите текст сообщением."))
			return
		}
		b.showCheckoutConfirm(ctx, chatID, nil, st.Payload.With(dialog.KeyComment, text))
	}
}

func (b *Bot) handleCheckoutCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	st := b.getState(ctx, chatID)

	switch cb.Data {
	case "co:skip":
		_ = b.answerCallback(cb, "", false)
		b.showCheckoutConfirm(ctx, chatID, &mid, st.Payload)
	case "co:edit":
		_ = b.answerCallback(cb, "", false)
		contact, _ := st.Payload[keyContact].(bool)
		b.show(chatID, &mid, "Как к вам обращаться? Напишите имя сообщением.", navKeyboard(false, true))
		b.setState(ctx, chatID, dialog.StateCheckoutName, dialog.Payload{keyContact: contact})
	case "co:send":
		if st.State != dialog.StateCheckoutConfirm {
			_ = b.answerCallback(cb, "Заявка уже обработана", false)
			return
		}
		b.submitOrder(ctx, cb, st)
	}
}

func (b *Bot) submitOrder(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	name, _ := dialog.GetString(st.Payload, dialog.KeyName)
	phone, _ := dialog.GetString(st.Payload, dialog.KeyPhone)
	comment, _ := dialog.GetString(st.Payload, dialog.KeyComment)
	contact, _ := st.Payload[keyContact].(bool)
	key := fmt.Sprintf("chat:%d", chatID)

	req := orders.Request{
		Name: name, Phone: phone, Message: comment,
		Source: orders.SourceContact, Channel: orders.ChannelTelegram, ChatID: chatID,
	}
	var err error
	if contact {
		_, err = b.orders.Submit(ctx, key, req)
	} else {
		w, werr := b.loadWizard(ctx, st)
		if werr != nil {
			_ = b.answerCallback(cb, "Каталог временно недоступен", true)
			return
		}
		var sent bool
		sent, err = w.Submit(func(sub wizard.Submission) error {
			_, err := b.orders.Submit(ctx, key, draftRequest(req, sub))
			return err
		})
		if err == nil && !sent {
			_ = b.answerCallback(cb, "Заказ пуст", false)
			return
		}
	}

	if err != nil {
		_ = b.answerCallback(cb, "", false)
		b.show(chatID, &mid, submitErrorText(err), checkoutConfirmKeyboard())
		return
	}

	_ = b.answerCallback(cb, "Отправлено", false)
	if err := b.users.SaveContact(ctx, cb.From.ID, name, phone); err != nil {
		b.log.Warn("save contact failed", "err", err)
	}
	b.editTextAndClear(chatID, mid, "Спасибо! Заявка отправлена, мы свяжемся с вами в ближайшее время.")
	if contact {
		// черновик заказа не трогаем
		b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
		return
	}
	if err := b.states.Reset(ctx, chatID); err != nil {
		b.log.Error("reset dialog state failed", "chat_id", chatID, "err", err)
	}
}

// draftRequest дополняет контакты клиента составом заказа.
func draftRequest(req orders.Request, sub wizard.Submission) orders.Request {
	req.Message = strings.TrimSpace(orders.RenderDraft(sub) + "\n\n" + req.Message)
	req.Total = sub.TotalPrice
	req.Source = sub.Source
	return req
}

func submitErrorText(err error) string {
	switch {
	case errors.Is(err, orders.ErrRateLimited):
		if wait, ok := orders.RetryAfter(err); ok {
			return fmt.Sprintf("Заявку можно отправлять не чаще раза в час. Попробуйте через %d мин.", int(math.Ceil(wait.Minutes())))
		}
		return "Заявку можно отправлять не чаще раза в час."
	case errors.Is(err, orders.ErrValidation):
		return "Проверьте имя и телефон и нажмите «Изменить контакты»."
	default:
		return "Не удалось отправить заявку, попробуйте ещё раз чуть позже. Заказ сохранён."
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

// renderWizard — текст и клавиатура текущего шага калькулятора.
func renderWizard(w *wizard.Wizard) (string, tgbotapi.InlineKeyboardMarkup) {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	var sb strings.Builder

	switch st := w.State().(type) {
	case wizard.NoPartSelected:
		if len(w.Parts()) == 0 {
			sb.WriteString("Калькулятор пока недоступен: в каталоге нет деталей.")
			break
		}
		sb.WriteString("Шаг 1 из 4. Выберите деталь памятника:")
		for _, p := range w.Parts() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(p.Name, "calc:part:"+p.ID)))
		}

	case wizard.PartSelected:
		writePart(&sb, st.Part)
		sb.WriteString("\nШаг 2 из 4. Выберите материал:")
		for _, m := range st.Part.Materials {
			label := m.Name
			if m.Origin != "" {
				label = fmt.Sprintf("%s (%s)", m.Name, m.Origin)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "calc:mat:"+m.ID)))
		}
		if len(st.Part.Materials) == 0 {
			sb.WriteString("\nДля этой детали материалов пока нет.")
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ К деталям", "calc:back")))

	case wizard.MaterialSelected:
		writePart(&sb, st.Part)
		fmt.Fprintf(&sb, "Материал: %s\n", st.Material.Name)
		sb.WriteString("\nШаг 3 из 4. Выберите размер:")
		for _, sz := range st.Part.Sizes {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(sizeLabel(sz), "calc:size:"+sz.ID)))
		}
		if len(st.Part.Sizes) == 0 {
			sb.WriteString("\nДля этой детали размеров пока нет.")
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("⬅️ К материалам", "calc:back")))

	case wizard.SizeSelected:
		cur, _ := w.Current()
		writePart(&sb, st.Part)
		fmt.Fprintf(&sb, "Материал: %s\nРазмер: %s\n", st.Material.Name, sizeLabel(st.Size))
		sb.WriteString("\nШаг 4 из 4. Количество и услуги:\n")
		fmt.Fprintf(&sb, "Количество: %d\n", st.Quantity)
		if len(st.Services) > 0 {
			names := make([]string, 0, len(st.Services))
			for _, s := range st.Services {
				names = append(names, s.Name)
			}
			fmt.Fprintf(&sb, "Услуги: %s\n", strings.Join(names, ", "))
		}
		fmt.Fprintf(&sb, "\nСтоимость позиции: %s", orders.Money(cur.TotalPrice))

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			btn("➖", "calc:qty:-"),
			btn(fmt.Sprintf("%d шт.", st.Quantity), "calc:noop"),
			btn("➕", "calc:qty:+"),
		))
		for _, s := range w.Services() {
			mark := "▫️"
			if hasService(st.Services, s.ID) {
				mark = "✅"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				btn(fmt.Sprintf("%s %s +%s", mark, s.Name, s.Price.StringFixed(2)), "calc:svc:"+s.ID),
			))
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("🛒 Добавить в заказ", "calc:add")),
			tgbotapi.NewInlineKeyboardRow(btn("⬅️ Другой размер", "calc:back")),
		)
	}

	if n := len(w.Draft()); n > 0 {
		fmt.Fprintf(&sb, "\n\n🧾 В заказе позиций: %d на %s", n, orders.Money(w.Total()))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🧾 Мой заказ", "draft:show")))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func writePart(sb *strings.Builder, p calculator.Part) {
	fmt.Fprintf(sb, "Деталь: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(sb, "%s\n", p.Description)
	}
}

func sizeLabel(sz calculator.Size) string {
	label := sz.Name
	if sz.Dimensions != "" {
		label += " · " + sz.Dimensions
	}
	return fmt.Sprintf("%s — %s", label, orders.Money(sz.Price))
}

func hasService(list []calculator.Service, id string) bool {
	for _, s := range list {
		if s.ID == id {
			return true
		}
	}
	return false
}

// stepBack откатывает мастер на шаг назад.
func stepBack(w *wizard.Wizard) {
	switch st := w.State().(type) {
	case wizard.SizeSelected:
		_ = w.SelectMaterial(st.Material.ID)
	case wizard.MaterialSelected:
		_ = w.SelectPart(st.Part.ID)
	default:
		w.Reset()
	}
}

// applyCalcAction — переход мастера по callback data «calc:*».
// Возвращает текст для всплывающей подсказки (может быть пустым).
func applyCalcAction(w *wizard.Wizard, data string) (string, error) {
	if id, ok := cutPrefix(data, "calc:part:"); ok {
		return "", w.SelectPart(id)
	}
	if id, ok := cutPrefix(data, "calc:mat:"); ok {
		return "", w.SelectMaterial(id)
	}
	if id, ok := cutPrefix(data, "calc:size:"); ok {
		return "", w.SelectSize(id)
	}
	if id, ok := cutPrefix(data, "calc:svc:"); ok {
		return "", w.ToggleService(id)
	}
	switch data {
	case "calc:qty:+":
		return "", w.Increment()
	case "calc:qty:-":
		return "", w.Decrement()
	case "calc:back":
		stepBack(w)
		return "", nil
	case "calc:open":
		w.Reset()
		return "", nil
	case "calc:add":
		sel, err := w.AddToDraft()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Добавлено: %s, %s", sel.Part.Name, orders.Money(sel.TotalPrice)), nil
	case "calc:noop":
		return "", nil
	}
	return "", fmt.Errorf("unknown calc action %q", data)
}

func (b *Bot) openCalculator(ctx context.Context, chatID int64, editMsgID *int) {
	st := b.getState(ctx, chatID)
	w, err := b.loadWizard(ctx, st)
	if err != nil {
		b.log.Error("load catalog failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Каталог временно недоступен, попробуйте позже."))
		return
	}
	w.Reset()
	b.showWizard(ctx, chatID, editMsgID, w)
}

func (b *Bot) showWizard(ctx context.Context, chatID int64, editMsgID *int, w *wizard.Wizard) {
	text, kb := renderWizard(w)
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateCalc, withWizard(dialog.Payload{dialog.KeyMsgID: mid}, w))
}

func (b *Bot) handleCalcCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	st := b.getState(ctx, chatID)
	w, err := b.loadWizard(ctx, st)
	if err != nil {
		b.log.Error("load catalog failed", "err", err)
		_ = b.answerCallback(cb, "Каталог временно недоступен", true)
		return
	}

	hint, err := applyCalcAction(w, cb.Data)
	if err != nil {
		b.log.Debug("calc action rejected", "data", cb.Data, "err", err)
		// кнопка от устаревшего экрана: показываем актуальный шаг
		hint = "Этот вариант больше недоступен"
		if errors.Is(err, wizard.ErrNoSize) || errors.Is(err, wizard.ErrNoPart) || errors.Is(err, wizard.ErrNoMaterial) {
			hint = "Сначала завершите выбор"
		}
	}
	if cb.Data == "calc:add" && err == nil && b.metrics != nil {
		b.metrics.QuoteComputed("telegram")
	}
	_ = b.answerCallback(cb, hint, false)
	b.showWizard(ctx, chatID, &cb.Message.MessageID, w)
}

package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
)

// keyPart — деталь, внутри которой правим материалы и размеры.
// В callback data помещается только один uuid, поэтому деталь живёт в payload.
const keyPart = "part_id"

/*** Детали ***/

func (b *Bot) showPartsAdmin(ctx context.Context, chatID int64, editMsgID *int) {
	parts, err := b.catalog.ListParts(ctx)
	if err != nil {
		b.log.Error("list parts failed", "err", err)
		b.show(chatID, editMsgID, "Ошибка загрузки каталога", navKeyboard(false, true))
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, p := range parts {
		label := fmt.Sprintf("%s %s", badge(p.IsActive), p.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "adm:part:"+p.ID)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("➕ Добавить деталь", "adm:part:add")),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	mid := b.show(chatID, editMsgID, "Детали памятника:", tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid})
}

func (b *Bot) showPartCard(ctx context.Context, chatID int64, editMsgID *int, id string) {
	p, err := b.catalog.Part(ctx, id)
	if err != nil {
		b.show(chatID, editMsgID, "Деталь не найдена", navKeyboard(false, true))
		return
	}

	toggle := "🙈 Скрыть"
	if !p.IsActive {
		toggle = "👁 Показать"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✏️ Название", "adm:pf:name:"+id),
			btn("📝 Описание", "adm:pf:desc:"+id),
			btn("🔢 Порядок", "adm:pf:order:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			btn(fmt.Sprintf("🪨 Материалы (%d)", len(p.Materials)), "adm:mats:"+id),
			btn(fmt.Sprintf("📐 Размеры (%d)", len(p.Sizes)), "adm:sizes:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(btn(toggle, "adm:part:tg:"+id), btn("🗑 Удалить", "adm:part:del:"+id)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К деталям", "adm:parts")),
	)

	desc := p.Description
	if desc == "" {
		desc = "—"
	}
	text := fmt.Sprintf("Деталь: %s %s\nОписание: %s\nПорядок: %d\nМатериалов: %d, размеров: %d",
		badge(p.IsActive), p.Name, desc, p.Order, len(p.Materials), len(p.Sizes))
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid, keyPart: id})
}

/*** Материалы детали ***/

func (b *Bot) showMaterialsAdmin(ctx context.Context, chatID int64, editMsgID *int, partID string) {
	p, err := b.catalog.Part(ctx, partID)
	if err != nil {
		b.show(chatID, editMsgID, "Деталь не найдена", navKeyboard(false, true))
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, m := range calculator.SortMaterials(p.Materials) {
		label := fmt.Sprintf("%s %s", badge(m.IsActive), m.Name)
		if m.Origin != "" {
			label += " (" + m.Origin + ")"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "adm:mat:"+m.ID)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("➕ Добавить материал", "adm:mat:add")),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К детали", "adm:part:"+partID)),
	)
	mid := b.show(chatID, editMsgID, fmt.Sprintf("Материалы: %s", p.Name), tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid, keyPart: partID})
}

func (b *Bot) showMaterialCard(ctx context.Context, chatID int64, editMsgID *int, partID, id string) {
	p, err := b.catalog.Part(ctx, partID)
	if err != nil {
		b.show(chatID, editMsgID, "Деталь не найдена", navKeyboard(false, true))
		return
	}
	m, ok := p.FindMaterial(id)
	if !ok {
		b.showMaterialsAdmin(ctx, chatID, editMsgID, partID)
		return
	}

	toggle := "🙈 Скрыть"
	if !m.IsActive {
		toggle = "👁 Показать"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✏️ Название", "adm:mf:name:"+id),
			btn("🌍 Происхождение", "adm:mf:origin:"+id),
			btn("🔢 Порядок", "adm:mf:order:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(btn(toggle, "adm:mat:tg:"+id), btn("🗑 Удалить", "adm:mat:del:"+id)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К материалам", "adm:mats:"+partID)),
	)
	origin := m.Origin
	if origin == "" {
		origin = "—"
	}
	text := fmt.Sprintf("Деталь: %s\nМатериал: %s %s\nПроисхождение: %s\nПорядок: %d",
		p.Name, badge(m.IsActive), m.Name, origin, m.Order)
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid, keyPart: partID})
}

/*** Размеры детали ***/

func (b *Bot) showSizesAdmin(ctx context.Context, chatID int64, editMsgID *int, partID string) {
	p, err := b.catalog.Part(ctx, partID)
	if err != nil {
		b.show(chatID, editMsgID, "Деталь не найдена", navKeyboard(false, true))
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, sz := range calculator.SortSizes(p.Sizes) {
		label := fmt.Sprintf("%s %s", badge(sz.IsActive), sizeLabel(sz))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn(label, "adm:size:"+sz.ID)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("➕ Добавить размер", "adm:size:add")),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К детали", "adm:part:"+partID)),
	)
	mid := b.show(chatID, editMsgID, fmt.Sprintf("Размеры: %s", p.Name), tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid, keyPart: partID})
}

func (b *Bot) showSizeCard(ctx context.Context, chatID int64, editMsgID *int, partID, id string) {
	p, err := b.catalog.Part(ctx, partID)
	if err != nil {
		b.show(chatID, editMsgID, "Деталь не найдена", navKeyboard(false, true))
		return
	}
	sz, ok := p.FindSize(id)
	if !ok {
		b.showSizesAdmin(ctx, chatID, editMsgID, partID)
		return
	}

	toggle := "🙈 Скрыть"
	if !sz.IsActive {
		toggle = "👁 Показать"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("✏️ Название", "adm:sf:name:"+id),
			btn("📏 Габариты", "adm:sf:dim:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			btn("💰 Цена", "adm:sf:price:"+id),
			btn("🔢 Порядок", "adm:sf:order:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(btn(toggle, "adm:size:tg:"+id), btn("🗑 Удалить", "adm:size:del:"+id)),
		tgbotapi.NewInlineKeyboardRow(btn("⬅️ К размерам", "adm:sizes:"+partID)),
	)
	text := fmt.Sprintf("Деталь: %s\nРазмер: %s %s\nГабариты: %s\nЦена: %s\nПорядок: %d",
		p.Name, badge(sz.IsActive), sz.Name, sz.Dimensions, orders.Money(sz.Price), sz.Order)
	mid := b.show(chatID, editMsgID, text, kb)
	b.setState(ctx, chatID, dialog.StateAdmMenu, dialog.Payload{dialog.KeyMsgID: mid, keyPart: partID})
}

/*** Ввод значений ***/

func (b *Bot) askEdit(ctx context.Context, chatID int64, editMsgID int, t EditTarget) {
	mid := b.show(chatID, &editMsgID, editPrompt(t), navKeyboard(true, true))
	b.setState(ctx, chatID, dialog.StateAdmAwaitTxt, dialog.Payload{
		dialog.KeyEdit: t, dialog.KeyMsgID: mid, keyPart: t.PartID,
	})
}

func (b *Bot) handleAdminText(ctx context.Context, msg *tgbotapi.Message, st *dialog.Item) {
	chatID := msg.Chat.ID
	var t EditTarget
	if !dialog.GetJSON(st.Payload, dialog.KeyEdit, &t) {
		b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
		return
	}

	if err := applyEdit(ctx, b.catalog, t, msg.Text); err != nil {
		if !errors.Is(err, errBadInput) && !errors.Is(err, calculator.ErrValidation) {
			b.log.Error("catalog edit failed", "kind", t.Kind, "field", t.Field, "id", t.ID, "err", err)
		}
		b.send(tgbotapi.NewMessage(chatID, editErrorText(err)))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, "✅ Сохранено"))
	b.returnFromEdit(ctx, chatID, nil, t)
}

// returnFromEdit показывает экран, с которого начали правку.
func (b *Bot) returnFromEdit(ctx context.Context, chatID int64, editMsgID *int, t EditTarget) {
	isNew := t.Field == fieldNew
	switch {
	case t.Kind == kindPart && isNew:
		b.showPartsAdmin(ctx, chatID, editMsgID)
	case t.Kind == kindPart:
		b.showPartCard(ctx, chatID, editMsgID, t.ID)
	case t.Kind == kindMaterial && isNew:
		b.showMaterialsAdmin(ctx, chatID, editMsgID, t.PartID)
	case t.Kind == kindMaterial:
		b.showMaterialCard(ctx, chatID, editMsgID, t.PartID, t.ID)
	case t.Kind == kindSize && isNew:
		b.showSizesAdmin(ctx, chatID, editMsgID, t.PartID)
	case t.Kind == kindSize:
		b.showSizeCard(ctx, chatID, editMsgID, t.PartID, t.ID)
	case t.Kind == kindService && isNew:
		b.showServicesAdmin(ctx, chatID, editMsgID)
	case t.Kind == kindService:
		b.showServiceCard(ctx, chatID, editMsgID, t.ID)
	default:
		b.showPartsAdmin(ctx, chatID, editMsgID)
	}
}

/*** Callback ***/

// handleAdminCatalogCallback — все «adm:*» кроме услуг.
func (b *Bot) handleAdminCatalogCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	data := cb.Data
	st := b.getState(ctx, chatID)
	partID, _ := dialog.GetString(st.Payload, keyPart)

	// поля: adm:pf|mf|sf:<field>:<id>
	for prefix, kind := range map[string]string{"adm:pf:": kindPart, "adm:mf:": kindMaterial, "adm:sf:": kindSize, "adm:vf:": kindService} {
		if rest, ok := cutPrefix(data, prefix); ok {
			field, id, ok := cutField(rest)
			if !ok {
				break
			}
			_ = b.answerCallback(cb, "", false)
			if kind == kindPart {
				partID = id
			}
			b.askEdit(ctx, chatID, mid, EditTarget{Kind: kind, Field: field, PartID: partID, ID: id})
			return
		}
	}

	switch {
	case data == "adm:parts":
		_ = b.answerCallback(cb, "", false)
		b.showPartsAdmin(ctx, chatID, &mid)
		return
	case data == "adm:svcs":
		_ = b.answerCallback(cb, "", false)
		b.showServicesAdmin(ctx, chatID, &mid)
		return
	case data == "adm:part:add":
		_ = b.answerCallback(cb, "", false)
		b.askEdit(ctx, chatID, mid, EditTarget{Kind: kindPart, Field: fieldNew})
		return
	case data == "adm:mat:add":
		_ = b.answerCallback(cb, "", false)
		b.askEdit(ctx, chatID, mid, EditTarget{Kind: kindMaterial, Field: fieldNew, PartID: partID})
		return
	case data == "adm:size:add":
		_ = b.answerCallback(cb, "", false)
		b.askEdit(ctx, chatID, mid, EditTarget{Kind: kindSize, Field: fieldNew, PartID: partID})
		return
	case data == "adm:svc:add":
		_ = b.answerCallback(cb, "", false)
		b.askEdit(ctx, chatID, mid, EditTarget{Kind: kindService, Field: fieldNew})
		return
	}

	if id, ok := cutPrefix(data, "adm:mats:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showMaterialsAdmin(ctx, chatID, &mid, id)
		return
	}
	if id, ok := cutPrefix(data, "adm:sizes:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showSizesAdmin(ctx, chatID, &mid, id)
		return
	}

	// Переключение активности и удаление
	if t, action, ok := parseItemAction(data); ok {
		t.PartID = partID
		if t.Kind == kindPart {
			t.PartID = t.ID
		}
		b.itemAction(ctx, cb, t, action)
		return
	}

	// Карточки
	if id, ok := cutPrefix(data, "adm:part:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showPartCard(ctx, chatID, &mid, id)
		return
	}
	if id, ok := cutPrefix(data, "adm:mat:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showMaterialCard(ctx, chatID, &mid, partID, id)
		return
	}
	if id, ok := cutPrefix(data, "adm:size:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showSizeCard(ctx, chatID, &mid, partID, id)
		return
	}
	if id, ok := cutPrefix(data, "adm:svc:"); ok {
		_ = b.answerCallback(cb, "", false)
		b.showServiceCard(ctx, chatID, &mid, id)
		return
	}
	_ = b.answerCallback(cb, "Неизвестное действие", false)
}

// cutField: "price:<id>" -> "price", "<id>".
func cutField(s string) (string, string, bool) {
	for _, f := range []string{fieldName, fieldDesc, fieldOrigin, fieldDim, fieldPrice, fieldOrder} {
		if id, ok := cutPrefix(s, f+":"); ok && id != "" {
			return f, id, true
		}
	}
	return "", "", false
}

// parseItemAction разбирает «adm:<kind>:<tg|del|delok>:<id>».
func parseItemAction(data string) (EditTarget, string, bool) {
	kinds := map[string]string{"part": kindPart, "mat": kindMaterial, "size": kindSize, "svc": kindService}
	for short, kind := range kinds {
		for _, action := range []string{"tg", "delok", "del"} {
			if id, ok := cutPrefix(data, "adm:"+short+":"+action+":"); ok && id != "" {
				return EditTarget{Kind: kind, ID: id}, action, true
			}
		}
	}
	return EditTarget{}, "", false
}

func (b *Bot) itemAction(ctx context.Context, cb *tgbotapi.CallbackQuery, t EditTarget, action string) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID

	switch action {
	case "del":
		_ = b.answerCallback(cb, "", false)
		short := map[string]string{kindPart: "part", kindMaterial: "mat", kindSize: "size", kindService: "svc"}[t.Kind]
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				btn("🗑 Да, удалить", fmt.Sprintf("adm:%s:delok:%s", short, t.ID)),
				btn("Отмена", fmt.Sprintf("adm:%s:%s", short, t.ID)),
			),
		)
		text := "Удалить запись? Отменить удаление будет нельзя."
		if t.Kind == kindPart {
			text = "Удалить деталь вместе со всеми её материалами и размерами?"
		}
		b.show(chatID, &mid, text, kb)
		return

	case "delok":
		if err := b.deleteItem(ctx, t); err != nil && !errors.Is(err, calculator.ErrNotFound) {
			b.log.Error("catalog delete failed", "kind", t.Kind, "id", t.ID, "err", err)
			_ = b.answerCallback(cb, "Ошибка удаления", true)
			return
		}
		_ = b.answerCallback(cb, "Удалено", false)
		t.Field = fieldNew // после удаления возвращаемся к списку
		b.returnFromEdit(ctx, chatID, &mid, t)
		return

	case "tg":
		if err := b.toggleItem(ctx, t); err != nil {
			b.log.Error("catalog toggle failed", "kind", t.Kind, "id", t.ID, "err", err)
			_ = b.answerCallback(cb, "Ошибка сохранения", true)
			return
		}
		_ = b.answerCallback(cb, "Готово", false)
		b.returnFromEdit(ctx, chatID, &mid, t)
	}
}

func (b *Bot) deleteItem(ctx context.Context, t EditTarget) error {
	switch t.Kind {
	case kindPart:
		return b.catalog.DeletePart(ctx, t.ID)
	case kindMaterial:
		return b.catalog.DeleteMaterial(ctx, t.PartID, t.ID)
	case kindSize:
		return b.catalog.DeleteSize(ctx, t.PartID, t.ID)
	case kindService:
		return b.catalog.DeleteService(ctx, t.ID)
	}
	return unknownField(t)
}

// toggleItem скрывает запись с витрины калькулятора или возвращает её.
func (b *Bot) toggleItem(ctx context.Context, t EditTarget) error {
	switch t.Kind {
	case kindPart:
		p, err := b.catalog.Part(ctx, t.ID)
		if err != nil {
			return err
		}
		p.IsActive = !p.IsActive
		return b.catalog.UpdatePart(ctx, p)
	case kindMaterial:
		p, err := b.catalog.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		m, ok := p.FindMaterial(t.ID)
		if !ok {
			return calculator.ErrNotFound
		}
		m.IsActive = !m.IsActive
		return b.catalog.UpdateMaterial(ctx, t.PartID, m)
	case kindSize:
		p, err := b.catalog.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		sz, ok := p.FindSize(t.ID)
		if !ok {
			return calculator.ErrNotFound
		}
		sz.IsActive = !sz.IsActive
		return b.catalog.UpdateSize(ctx, t.PartID, sz)
	case kindService:
		svc, err := b.catalog.ServiceByID(ctx, t.ID)
		if err != nil {
			return err
		}
		svc.IsActive = !svc.IsActive
		return b.catalog.UpdateService(ctx, svc)
	}
	return unknownField(t)
}

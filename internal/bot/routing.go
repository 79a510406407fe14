package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/users"
)

const helpText = "Команды:\n" +
	"/start — главное меню\n" +
	"/calc — калькулятор стоимости памятника\n" +
	"/order — мой заказ\n" +
	"/cancel — отменить текущее действие\n" +
	"/help — помощь"

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	switch msg.Command() {
	case "start":
		role := users.RoleCustomer
		if b.isAdmin(tgID) {
			role = users.RoleAdmin
		}
		tg := users.Telegram{ID: tgID, Username: msg.From.UserName, FirstName: msg.From.FirstName, LastName: msg.From.LastName}
		if _, err := b.users.UpsertFromTelegram(ctx, tg, role); err != nil {
			b.log.Error("upsert user failed", "tg_id", tgID, "err", err)
		}

		if b.isAdmin(tgID) {
			b.sendText(chatID, "Привет, админ! Каталог, прайс и заявки доступны через кнопки снизу.", adminReplyKeyboard())
			return
		}
		b.sendText(chatID,
			"Здравствуйте! Здесь можно рассчитать стоимость памятника: выберите деталь, материал, размер и услуги, "+
				"соберите заказ и отправьте заявку. Нажмите «Калькулятор».",
			customerReplyKeyboard())
		return

	case "help":
		b.send(tgbotapi.NewMessage(chatID, helpText))
		return

	case "calc":
		b.openCalculator(ctx, chatID, nil)
		return

	case "order":
		b.showDraft(ctx, chatID, nil)
		return

	case "cancel":
		b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
		b.send(tgbotapi.NewMessage(chatID, "Отменено."))
		return

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
		return
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	tgID := msg.From.ID
	admin := b.isAdmin(tgID)

	// Нижняя панель
	switch strings.TrimSpace(msg.Text) {
	case btnCalc:
		b.openCalculator(ctx, chatID, nil)
		return
	case btnDraft:
		b.showDraft(ctx, chatID, nil)
		return
	case btnContact:
		b.startCheckout(ctx, chatID, tgID, nil, true)
		return
	}
	if admin {
		switch strings.TrimSpace(msg.Text) {
		case btnParts:
			b.showPartsAdmin(ctx, chatID, nil)
			return
		case btnServices:
			b.showServicesAdmin(ctx, chatID, nil)
			return
		case btnPrices:
			b.showPriceMenu(ctx, chatID, nil)
			return
		case btnOrders:
			b.showInbox(ctx, chatID, nil, false)
			return
		}
	}

	// Диалоги (текстовые вводы)
	st := b.getState(ctx, chatID)
	switch st.State {
	case dialog.StateCheckoutName, dialog.StateCheckoutPhone, dialog.StateCheckoutComment:
		b.handleCheckoutText(ctx, msg, st)
		return
	case dialog.StateAdmAwaitTxt:
		if admin {
			b.handleAdminText(ctx, msg, st)
			return
		}
	case dialog.StatePriceImportFile:
		if admin {
			b.handlePriceFile(ctx, msg)
			return
		}
	}

	b.send(tgbotapi.NewMessage(chatID, "Воспользуйтесь кнопками меню или наберите /help"))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID

	switch data {
	case "nav:cancel":
		_ = b.answerCallback(cb, "Отменено", false)
		// черновик заказа при отмене остаётся, см. setState
		b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
		b.editTextAndClear(chatID, mid, "Действие отменено.")
		return
	case "nav:back":
		_ = b.answerCallback(cb, "", false)
		b.navBack(ctx, chatID, mid)
		return
	}

	switch {
	case strings.HasPrefix(data, "calc:"):
		b.handleCalcCallback(ctx, cb)
		return
	case strings.HasPrefix(data, "draft:"):
		b.handleDraftCallback(ctx, cb)
		return
	case strings.HasPrefix(data, "co:"):
		b.handleCheckoutCallback(ctx, cb)
		return
	}

	// дальше только админка
	if !b.isAdmin(cb.From.ID) {
		_ = b.answerCallback(cb, "Доступ запрещён", true)
		return
	}
	switch {
	case strings.HasPrefix(data, "adm:"):
		b.handleAdminCatalogCallback(ctx, cb)
	case strings.HasPrefix(data, "price:"):
		b.handlePriceCallback(ctx, cb)
	case strings.HasPrefix(data, "ord:"):
		b.handleOrdersCallback(ctx, cb)
	default:
		_ = b.answerCallback(cb, "Неизвестное действие", false)
	}
}

// navBack — шаг назад из ожидания ввода.
func (b *Bot) navBack(ctx context.Context, chatID int64, mid int) {
	st := b.getState(ctx, chatID)
	switch st.State {
	case dialog.StateAdmAwaitTxt:
		var t EditTarget
		if dialog.GetJSON(st.Payload, dialog.KeyEdit, &t) {
			b.returnFromEdit(ctx, chatID, &mid, t)
			return
		}
	case dialog.StatePriceImportFile, dialog.StatePriceMenu:
		b.showPriceMenu(ctx, chatID, &mid)
		return
	}
	b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
	b.editTextAndClear(chatID, mid, "Действие отменено.")
}

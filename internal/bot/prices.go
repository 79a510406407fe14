package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/pricelist"
)

// главное меню «Прайс-лист»
func (b *Bot) showPriceMenu(ctx context.Context, chatID int64, editMsgID *int) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("⬇️ Выгрузить прайс", "price:export"),
			btn("⬆️ Загрузить прайс", "price:import"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	mid := b.show(chatID, editMsgID, "Прайс-лист: цены размеров и услуг в Excel. Выберите действие", kb)
	b.setState(ctx, chatID, dialog.StatePriceMenu, dialog.Payload{dialog.KeyMsgID: mid})
}

// exportPrices отправляет текущий прайс документом.
func (b *Bot) exportPrices(ctx context.Context, chatID int64, msgID int) {
	c, err := b.catalog.LoadCatalog(ctx)
	if err != nil {
		b.log.Error("load catalog failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка загрузки каталога")
		return
	}
	buf, err := pricelist.Export(c)
	if err != nil {
		b.log.Error("price export failed", "err", err)
		b.editTextAndClear(chatID, msgID, "Ошибка формирования файла")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("prices_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Текущие цены. Измените колонку price и загрузите файл через «Загрузить прайс». Пустая ячейка оставляет цену без изменений."
	b.send(doc)

	b.editTextWithNav(chatID, msgID, "Прайс выгружен.")
}

func (b *Bot) askPriceFile(ctx context.Context, chatID int64, msgID int) {
	b.editTextWithNav(chatID, msgID,
		"Отправьте Excel-файл (.xlsx), выгруженный через «Выгрузить прайс», с исправленной колонкой price.")
	b.setState(ctx, chatID, dialog.StatePriceImportFile, dialog.Payload{dialog.KeyMsgID: msgID})
}

func (b *Bot) handlePriceCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	_ = b.answerCallback(cb, "", false)

	switch cb.Data {
	case "price:export":
		b.exportPrices(ctx, chatID, mid)
	case "price:import":
		b.askPriceFile(ctx, chatID, mid)
	default:
		b.showPriceMenu(ctx, chatID, &mid)
	}
}

// handlePriceFile — документ в состоянии ожидания прайса.
func (b *Bot) handlePriceFile(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if msg.Document == nil || !strings.HasSuffix(strings.ToLower(msg.Document.FileName), ".xlsx") {
		b.send(tgbotapi.NewMessage(chatID,
			"Пожалуйста, отправьте Excel-файл (.xlsx), который был выгружен через «Выгрузить прайс»."))
		return
	}

	data, err := b.downloadTelegramFile(ctx, msg.Document.FileID)
	if err != nil {
		b.log.Error("download price file failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Не удалось скачать файл из Telegram, попробуйте ещё раз."))
		return
	}

	text, err := b.importPrices(ctx, data)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, text))
		return
	}
	b.sendText(chatID, text, navKeyboard(false, true))
	b.setState(ctx, chatID, dialog.StateIdle, dialog.Payload{})
}

// importPrices применяет файл целиком или не применяет ничего.
// Возвращает текст ответа админу.
func (b *Bot) importPrices(ctx context.Context, data []byte) (string, error) {
	c, err := b.catalog.LoadCatalog(ctx)
	if err != nil {
		b.log.Error("load catalog failed", "err", err)
		return "Ошибка загрузки каталога", err
	}

	ch, err := pricelist.Import(bytes.NewReader(data), c)
	if err != nil {
		var rowErr *pricelist.RowError
		if errors.As(err, &rowErr) {
			return fmt.Sprintf("Ошибка в строке %d: %v\nЦены не изменены.", rowErr.Row, rowErr.Err), err
		}
		return "Файл не похож на выгрузку прайса. Цены не изменены.", err
	}
	if len(ch.Updates) == 0 {
		return fmt.Sprintf("Изменений нет: строк %d, все цены совпадают с текущими.", ch.Rows), nil
	}

	n, err := b.catalog.UpdatePrices(ctx, ch.Updates)
	if err != nil {
		b.log.Error("price import failed", "err", err)
		return "Не удалось сохранить цены. Цены не изменены.", err
	}
	b.log.Info("prices imported", "rows", ch.Rows, "updated", n)
	return fmt.Sprintf("✅ Прайс загружен.\nСтрок: %d\nОбновлено цен: %d\nБез изменений: %d", ch.Rows, n, ch.Unchanged), nil
}

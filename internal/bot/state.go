package bot

import (
	"context"

	"github.com/Spok95/monument-calc/internal/dialog"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

// setState меняет состояние, сохраняя снимок калькулятора: черновик
// заказа переживает переходы по админке и отмену диалогов.
func (b *Bot) setState(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) {
	if payload == nil {
		payload = dialog.Payload{}
	}
	if _, ok := payload[dialog.KeyWizard]; !ok {
		if cur, err := b.states.Get(ctx, chatID); err == nil && cur != nil {
			if v, ok := cur.Payload[dialog.KeyWizard]; ok {
				payload = payload.With(dialog.KeyWizard, v)
			}
		}
	}
	if err := b.states.Set(ctx, chatID, state, payload); err != nil {
		b.log.Error("save dialog state failed", "chat_id", chatID, "state", state, "err", err)
	}
}

func (b *Bot) getState(ctx context.Context, chatID int64) *dialog.Item {
	st, err := b.states.Get(ctx, chatID)
	if err != nil || st == nil {
		if err != nil {
			b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		}
		return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}
	}
	if st.Payload == nil {
		st.Payload = dialog.Payload{}
	}
	return st
}

// loadWizard поднимает мастер по витрине и снимку из payload.
func (b *Bot) loadWizard(ctx context.Context, st *dialog.Item) (*wizard.Wizard, error) {
	view, err := b.catalog.ActiveCatalog(ctx)
	if err != nil {
		return nil, err
	}
	var snap wizard.Snapshot
	if !dialog.GetJSON(st.Payload, dialog.KeyWizard, &snap) {
		return wizard.New(view), nil
	}
	return wizard.Restore(view, snap), nil
}

func withWizard(p dialog.Payload, w *wizard.Wizard) dialog.Payload {
	return p.With(dialog.KeyWizard, w.Snapshot())
}

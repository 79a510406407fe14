package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/orders"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

func seedWizard() *wizard.Wizard {
	return wizard.New(calculator.ActiveView(calculator.Seed()))
}

func callbackData(kb tgbotapi.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func apply(t *testing.T, w *wizard.Wizard, data ...string) {
	t.Helper()
	for _, d := range data {
		_, err := applyCalcAction(w, d)
		require.NoError(t, err, d)
	}
}

func TestRenderWizardSteps(t *testing.T) {
	t.Parallel()

	w := seedWizard()
	text, kb := renderWizard(w)
	assert.Contains(t, text, "Шаг 1 из 4")
	assert.Equal(t, []string{"calc:part:part-stella", "calc:part:part-base", "calc:part:part-flowerbed", "nav:cancel"}, callbackData(kb))

	apply(t, w, "calc:part:part-stella")
	text, kb = renderWizard(w)
	assert.Contains(t, text, "Деталь: Стелла")
	assert.Contains(t, callbackData(kb), "calc:mat:mat-stella-kapust")

	apply(t, w, "calc:mat:mat-stella-kapust")
	text, kb = renderWizard(w)
	assert.Contains(t, text, "Шаг 3 из 4")
	assert.Contains(t, callbackData(kb), "calc:size:size-stella-std")

	apply(t, w, "calc:size:size-stella-std", "calc:svc:svc-engraving-text")
	text, kb = renderWizard(w)
	assert.Contains(t, text, "Услуги: Гравировка текста")
	assert.Contains(t, text, "Стоимость позиции: 827.50 руб.")
	assert.Contains(t, callbackData(kb), "calc:add")
	assert.NotContains(t, callbackData(kb), "draft:show")

	hint, err := applyCalcAction(w, "calc:add")
	require.NoError(t, err)
	assert.Equal(t, "Добавлено: Стелла, 827.50 руб.", hint)

	text, kb = renderWizard(w)
	assert.Contains(t, text, "В заказе позиций: 1 на 827.50 руб.")
	assert.Contains(t, callbackData(kb), "draft:show")
}

func TestRenderWizardEmptyCatalog(t *testing.T) {
	t.Parallel()

	text, kb := renderWizard(wizard.New(calculator.Catalog{}))
	assert.Contains(t, text, "нет деталей")
	assert.Equal(t, []string{"nav:cancel"}, callbackData(kb))
}

func TestApplyCalcAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prepare  []string
		data     string
		wantStep wizard.Step
		wantErr  error
	}{
		{name: "size before part", data: "calc:size:size-stella-std", wantStep: wizard.StepNoPart, wantErr: wizard.ErrNoPart},
		{name: "size before material", prepare: []string{"calc:part:part-base"}, data: "calc:size:size-base-std", wantStep: wizard.StepPart, wantErr: wizard.ErrNoMaterial},
		{name: "stale part", data: "calc:part:part-gone", wantStep: wizard.StepNoPart, wantErr: wizard.ErrUnknownOption},
		{name: "quantity before size", prepare: []string{"calc:part:part-base"}, data: "calc:qty:+", wantStep: wizard.StepPart, wantErr: wizard.ErrNoSize},
		{name: "back from size", prepare: []string{"calc:part:part-base", "calc:mat:mat-base-gabbro", "calc:size:size-base-std"}, data: "calc:back", wantStep: wizard.StepMaterial},
		{name: "back from material", prepare: []string{"calc:part:part-base", "calc:mat:mat-base-gabbro"}, data: "calc:back", wantStep: wizard.StepPart},
		{name: "back from part", prepare: []string{"calc:part:part-base"}, data: "calc:back", wantStep: wizard.StepNoPart},
		{name: "open resets", prepare: []string{"calc:part:part-base", "calc:mat:mat-base-gabbro"}, data: "calc:open", wantStep: wizard.StepNoPart},
		{name: "noop", prepare: []string{"calc:part:part-base"}, data: "calc:noop", wantStep: wizard.StepPart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := seedWizard()
			apply(t, w, tt.prepare...)

			_, err := applyCalcAction(w, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStep, w.State().Step())
		})
	}

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		_, err := applyCalcAction(seedWizard(), "calc:zzz")
		assert.Error(t, err)
	})
}

func TestApplyDraftAction(t *testing.T) {
	t.Parallel()

	w := seedWizard()
	apply(t, w,
		"calc:part:part-stella", "calc:mat:mat-stella-gabbro", "calc:size:size-stella-small", "calc:add",
		"calc:part:part-base", "calc:mat:mat-base-gabbro", "calc:size:size-base-std", "calc:add",
	)
	require.Len(t, w.Draft(), 2)

	require.NoError(t, applyDraftAction(w, "draft:inc:0"))
	assert.True(t, decimal.RequireFromString("900").Equal(w.Draft()[0].TotalPrice))

	require.NoError(t, applyDraftAction(w, "draft:dec:0"))
	require.NoError(t, applyDraftAction(w, "draft:dec:0"))
	assert.Equal(t, 1, w.Draft()[0].Quantity)

	assert.ErrorIs(t, applyDraftAction(w, "draft:inc:7"), wizard.ErrIndex)
	assert.ErrorIs(t, applyDraftAction(w, "draft:rm:x"), wizard.ErrIndex)

	require.NoError(t, applyDraftAction(w, "draft:rm:0"))
	require.Len(t, w.Draft(), 1)
	assert.Equal(t, "part-base", w.Draft()[0].Part.ID)

	require.NoError(t, applyDraftAction(w, "draft:clear"))
	assert.Empty(t, w.Draft())

	text, kb := renderDraftView(w)
	assert.Contains(t, text, "Заказ пока пуст")
	assert.Contains(t, callbackData(kb), "calc:open")
}

func TestRenderDraftView(t *testing.T) {
	t.Parallel()

	w := seedWizard()
	apply(t, w, "calc:part:part-base", "calc:mat:mat-base-pokost", "calc:size:size-base-wide", "calc:qty:+", "calc:add")

	text, kb := renderDraftView(w)
	assert.Contains(t, text, "1. Подставка, Гранит Покостовский, Широкая (60×20×15 см) × 2")
	assert.Contains(t, text, "Итого: 820.00 руб.")
	data := callbackData(kb)
	for _, want := range []string{"draft:dec:0", "draft:inc:0", "draft:rm:0", "draft:checkout", "draft:clear"} {
		assert.Contains(t, data, want)
	}
}

// Telegram принимает callback data не длиннее 64 байт.
func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	c := calculator.Catalog{
		Parts: []calculator.Part{{
			ID: id, Name: "Стелла", IsActive: true,
			Materials: []calculator.Material{{ID: uuid.NewString(), Name: "Габбро", IsActive: true}},
			Sizes:     []calculator.Size{{ID: uuid.NewString(), Name: "Стандарт", Price: decimal.NewFromInt(1), IsActive: true}},
		}},
		Services: []calculator.Service{{ID: uuid.NewString(), Name: "Установка", Price: decimal.NewFromInt(1), IsActive: true}},
	}
	w := wizard.New(c)

	var all []string
	collect := func() {
		_, kb := renderWizard(w)
		all = append(all, callbackData(kb)...)
	}
	collect()
	apply(t, w, "calc:part:"+id)
	collect()
	apply(t, w, "calc:mat:"+c.Parts[0].Materials[0].ID)
	collect()
	apply(t, w, "calc:size:"+c.Parts[0].Sizes[0].ID)
	collect()

	for _, action := range []string{"delok", "del", "tg"} {
		all = append(all, "adm:part:"+action+":"+id, "adm:size:"+action+":"+id)
	}
	all = append(all, "adm:pf:order:"+id, "adm:sf:price:"+id, "ord:done:"+uuid.NewString())

	for _, d := range all {
		assert.LessOrEqual(t, len(d), 64, d)
	}
}

func TestSubmitErrorText(t *testing.T) {
	t.Parallel()

	rl := fmt.Errorf("submit: %w", &orders.RateLimitError{RetryAfter: 15*time.Minute + time.Second})
	assert.Contains(t, submitErrorText(rl), "через 16 мин.")
	assert.True(t, strings.HasPrefix(submitErrorText(orders.ErrValidation), "Проверьте"))
	assert.Contains(t, submitErrorText(orders.ErrDelivery), "Заказ сохранён")
}

func TestDraftRequestCarriesCalculatorSource(t *testing.T) {
	t.Parallel()

	w := seedWizard()
	apply(t, w, "calc:part:part-base", "calc:mat:mat-base-gabbro", "calc:size:size-base-std")
	_, err := applyCalcAction(w, "calc:add")
	require.NoError(t, err)

	var got orders.Request
	sent, err := w.Submit(func(sub wizard.Submission) error {
		got = draftRequest(orders.Request{
			Name: "Анна", Phone: "+79215551234", Message: "после обеда",
			Source: orders.SourceContact, Channel: orders.ChannelTelegram,
		}, sub)
		return nil
	})
	require.NoError(t, err)
	require.True(t, sent)

	assert.Equal(t, orders.SourceCalculator, got.Source)
	assert.Equal(t, orders.ChannelTelegram, got.Channel)
	assert.True(t, decimal.RequireFromString("320").Equal(got.Total), got.Total.String())
	assert.True(t, strings.HasPrefix(got.Message, "Заказ из калькулятора:"))
	assert.True(t, strings.HasSuffix(got.Message, "после обеда"))
}

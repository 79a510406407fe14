package orders

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

func TestRenderDraft(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString
	sel := wizard.Selection{
		Part:     calculator.Part{Name: "Стелла"},
		Material: calculator.Material{Name: "Габбро-диабаз"},
		Size:     calculator.Size{Name: "Стандарт", Dimensions: "100×50×5 см", Price: price("682.50")},
		Quantity: 2,
		Services: []calculator.Service{{Name: "Гравировка текста", Price: price("145")}},
	}
	sel.Reprice()

	got := RenderDraft(wizard.Submission{
		Selections: []wizard.Selection{sel},
		TotalPrice: sel.TotalPrice,
		Source:     wizard.SourceCalculator,
	})

	want := "Заказ из калькулятора:\n" +
		"1. Стелла, Габбро-диабаз, Стандарт (100×50×5 см) × 2\n" +
		"   Услуги: Гравировка текста 145.00 руб.\n" +
		"   Сумма: 1510.00 руб.\n" +
		"Итого: 1510.00 руб."
	assert.Equal(t, want, got)
}

func TestRenderOrderTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{source: SourceCalculator, want: "📩 Заказ из калькулятора (telegram)"},
		{source: SourceContact, want: "📩 Просьба связаться (telegram)"},
		{source: "", want: "📩 Новая заявка (telegram)"},
	}
	for _, tt := range tests {
		got := RenderOrder(Order{Name: "Анна", Phone: "+79215551234", Source: tt.source, Channel: ChannelTelegram})
		assert.True(t, strings.HasPrefix(got, tt.want+"\n"), got)
	}
}

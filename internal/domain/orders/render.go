package orders

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
	"github.com/Spok95/monument-calc/internal/domain/wizard"
)

// Money форматирует цену с двумя знаками.
func Money(d decimal.Decimal) string { return d.StringFixed(2) + " руб." }

// RenderDraft — текст заявки из калькулятора: по строке на позицию и итог.
func RenderDraft(sub wizard.Submission) string {
	var b strings.Builder
	b.WriteString("Заказ из калькулятора:\n")
	for i, s := range sub.Selections {
		fmt.Fprintf(&b, "%d. %s, %s, %s", i+1, s.Part.Name, s.Material.Name, s.Size.Name)
		if s.Size.Dimensions != "" {
			fmt.Fprintf(&b, " (%s)", s.Size.Dimensions)
		}
		fmt.Fprintf(&b, " × %d\n", s.Quantity)
		if len(s.Services) > 0 {
			names := lo.Map(s.Services, func(svc calculator.Service, _ int) string {
				return fmt.Sprintf("%s %s", svc.Name, Money(svc.Price))
			})
			fmt.Fprintf(&b, "   Услуги: %s\n", strings.Join(names, "; "))
		}
		fmt.Fprintf(&b, "   Сумма: %s\n", Money(s.TotalPrice))
	}
	fmt.Fprintf(&b, "Итого: %s", Money(sub.TotalPrice))
	return b.String()
}

// RenderOrder — карточка заявки для админского чата.
func RenderOrder(o Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📩 %s (%s)\n", sourceTitle(o.Source), o.Channel)
	fmt.Fprintf(&b, "Имя: %s\nТелефон: %s\n", o.Name, o.Phone)
	if o.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", o.Message)
	}
	if !o.Total.IsZero() && !strings.Contains(o.Message, "Итого:") {
		fmt.Fprintf(&b, "\nИтого: %s\n", Money(o.Total))
	}
	fmt.Fprintf(&b, "\nID: %s", o.ID)
	return b.String()
}

func sourceTitle(source string) string {
	switch source {
	case SourceCalculator:
		return "Заказ из калькулятора"
	case SourceContact:
		return "Просьба связаться"
	default:
		return "Новая заявка"
	}
}

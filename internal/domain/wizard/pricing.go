package wizard

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

// SourceCalculator — источник заявки, собранной калькулятором.
const SourceCalculator = "calculator"

// Selection — позиция заказа.
type Selection struct {
	Part       calculator.Part      `json:"part"`
	Material   calculator.Material  `json:"material"`
	Size       calculator.Size      `json:"size"`
	Quantity   int                  `json:"quantity"`
	Services   []calculator.Service `json:"services"`
	TotalPrice decimal.Decimal      `json:"totalPrice"`
}

// Submission — то, что уходит в оформление заказа.
type Submission struct {
	Selections []Selection     `json:"selections"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Source     string          `json:"source"`
}

// LinePrice = цена размера × количество + сумма услуг.
// Услуги считаются один раз на позицию, не за штуку.
func LinePrice(size calculator.Size, quantity int, services []calculator.Service) decimal.Decimal {
	total := size.Price.Mul(decimal.NewFromInt(int64(quantity)))
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}

func DraftTotal(selections []Selection) decimal.Decimal {
	total := decimal.Zero
	for _, s := range selections {
		total = total.Add(s.TotalPrice)
	}
	return total
}

// Reprice пересчитывает итог позиции по её же размеру и услугам.
func (s *Selection) Reprice() {
	s.TotalPrice = LinePrice(s.Size, s.Quantity, s.Services)
}

// bare убирает вложенные списки, чтобы позиция не тащила весь ассортимент детали.
func bare(p calculator.Part) calculator.Part {
	p.Materials = nil
	p.Sizes = nil
	return p
}

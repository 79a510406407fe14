package wizard

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

// Line — позиция, выбранная по идентификаторам (HTTP API).
type Line struct {
	PartID     string   `json:"partId"`
	MaterialID string   `json:"materialId"`
	SizeID     string   `json:"sizeId"`
	Quantity   int      `json:"quantity"`
	ServiceIDs []string `json:"serviceIds"`
}

// Quote прогоняет каждую позицию через мастер и собирает черновик.
// Ошибка содержит номер позиции (с нуля).
func Quote(view calculator.Catalog, lines []Line) (Submission, error) {
	w := New(view)
	for i, l := range lines {
		if err := w.replay(l); err != nil {
			return Submission{}, fmt.Errorf("line %d: %w", i, err)
		}
		if _, err := w.AddToDraft(); err != nil {
			return Submission{}, fmt.Errorf("line %d: %w", i, err)
		}
	}
	return Submission{
		Selections: w.Draft(),
		TotalPrice: w.Total(),
		Source:     SourceCalculator,
	}, nil
}

func (w *Wizard) replay(l Line) error {
	if err := w.SelectPart(l.PartID); err != nil {
		return err
	}
	if err := w.SelectMaterial(l.MaterialID); err != nil {
		return err
	}
	if err := w.SelectSize(l.SizeID); err != nil {
		return err
	}
	if err := w.SetQuantity(l.Quantity); err != nil {
		return err
	}
	// повтор id переключил бы услугу обратно
	for _, id := range lo.Uniq(l.ServiceIDs) {
		if err := w.ToggleService(id); err != nil {
			return err
		}
	}
	return nil
}

package wizard

import (
	"github.com/samber/lo"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

// Snapshot — состояние мастера в виде идентификаторов. Хранится
// в payload диалога между сообщениями бота.
type Snapshot struct {
	PartID     string      `json:"part_id,omitempty"`
	MaterialID string      `json:"material_id,omitempty"`
	SizeID     string      `json:"size_id,omitempty"`
	Quantity   int         `json:"quantity,omitempty"`
	ServiceIDs []string    `json:"service_ids,omitempty"`
	Draft      []Selection `json:"draft,omitempty"`
}

func (w *Wizard) Snapshot() Snapshot {
	s := Snapshot{Draft: w.Draft()}
	switch st := w.state.(type) {
	case PartSelected:
		s.PartID = st.Part.ID
	case MaterialSelected:
		s.PartID, s.MaterialID = st.Part.ID, st.Material.ID
	case SizeSelected:
		s.PartID, s.MaterialID, s.SizeID = st.Part.ID, st.Material.ID, st.Size.ID
		s.Quantity = st.Quantity
		s.ServiceIDs = lo.Map(st.Services, func(svc calculator.Service, _ int) string { return svc.ID })
	}
	return s
}

// Restore поднимает мастер из снимка. Если что-то из выбранного
// пропало из каталога, мастер останавливается на последнем шаге,
// который ещё можно восстановить. Черновик хранит цены на момент
// добавления и переносится как есть.
func Restore(view calculator.Catalog, s Snapshot) *Wizard {
	w := New(view)
	w.draft = s.Draft

	if s.PartID == "" || w.SelectPart(s.PartID) != nil {
		return w
	}
	if s.MaterialID == "" || w.SelectMaterial(s.MaterialID) != nil {
		return w
	}
	if s.SizeID == "" || w.SelectSize(s.SizeID) != nil {
		return w
	}
	_ = w.SetQuantity(s.Quantity)
	for _, id := range s.ServiceIDs {
		// снятые с витрины услуги просто пропускаем
		_ = w.ToggleService(id)
	}
	return w
}

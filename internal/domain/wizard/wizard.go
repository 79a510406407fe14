package wizard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

var (
	ErrNoPart        = errors.New("wizard: part is not selected")
	ErrNoMaterial    = errors.New("wizard: material is not selected")
	ErrNoSize        = errors.New("wizard: size is not selected")
	ErrUnknownOption = errors.New("wizard: unknown option")
	ErrIndex         = errors.New("wizard: selection index out of range")
)

// Wizard — пошаговый выбор позиции (деталь → материал → размер →
// количество и услуги) и черновик заказа из готовых позиций.
// Каталог загружается заранее, сам мастер ввода-вывода не делает.
type Wizard struct {
	view  calculator.Catalog
	state State
	draft []Selection
}

// New создаёт мастер поверх витринного каталога (см. calculator.ActiveView).
func New(view calculator.Catalog) *Wizard {
	return &Wizard{view: view, state: NoPartSelected{}}
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) Parts() []calculator.Part { return w.view.Parts }

func (w *Wizard) Services() []calculator.Service { return w.view.Services }

// Materials — материалы выбранной детали.
func (w *Wizard) Materials() ([]calculator.Material, error) {
	p, ok := w.selectedPart()
	if !ok {
		return nil, ErrNoPart
	}
	return p.Materials, nil
}

// Sizes — размеры выбранной детали.
func (w *Wizard) Sizes() ([]calculator.Size, error) {
	p, ok := w.selectedPart()
	if !ok {
		return nil, ErrNoPart
	}
	return p.Sizes, nil
}

func (w *Wizard) selectedPart() (calculator.Part, bool) {
	switch st := w.state.(type) {
	case PartSelected:
		return st.Part, true
	case MaterialSelected:
		return st.Part, true
	case SizeSelected:
		return st.Part, true
	}
	return calculator.Part{}, false
}

/* Переходы */

// SelectPart сбрасывает материал, размер, услуги и количество.
func (w *Wizard) SelectPart(id string) error {
	p, ok := w.view.FindPart(id)
	if !ok {
		return fmt.Errorf("%w: part %q", ErrUnknownOption, id)
	}
	w.state = PartSelected{Part: p}
	return nil
}

// SelectMaterial сбрасывает размер, деталь остаётся.
func (w *Wizard) SelectMaterial(id string) error {
	p, ok := w.selectedPart()
	if !ok {
		return ErrNoPart
	}
	m, ok := p.FindMaterial(id)
	if !ok {
		return fmt.Errorf("%w: material %q", ErrUnknownOption, id)
	}
	w.state = MaterialSelected{Part: p, Material: m}
	return nil
}

// SelectSize открывает количество и услуги. При смене размера
// уже выбранные количество и услуги сохраняются.
func (w *Wizard) SelectSize(id string) error {
	var (
		p   calculator.Part
		m   calculator.Material
		qty = 1
		svc []calculator.Service
	)
	switch st := w.state.(type) {
	case MaterialSelected:
		p, m = st.Part, st.Material
	case SizeSelected:
		p, m, qty, svc = st.Part, st.Material, st.Quantity, st.Services
	case PartSelected:
		return ErrNoMaterial
	default:
		return ErrNoPart
	}
	sz, ok := p.FindSize(id)
	if !ok {
		return fmt.Errorf("%w: size %q", ErrUnknownOption, id)
	}
	w.state = SizeSelected{Part: p, Material: m, Size: sz, Quantity: qty, Services: svc}
	return nil
}

func (w *Wizard) sizeSelected() (SizeSelected, error) {
	st, ok := w.state.(SizeSelected)
	if !ok {
		return SizeSelected{}, ErrNoSize
	}
	return st, nil
}

func (w *Wizard) Increment() error {
	st, err := w.sizeSelected()
	if err != nil {
		return err
	}
	st.Quantity++
	w.state = st
	return nil
}

// Decrement не опускает количество ниже 1.
func (w *Wizard) Decrement() error {
	st, err := w.sizeSelected()
	if err != nil {
		return err
	}
	if st.Quantity > 1 {
		st.Quantity--
	}
	w.state = st
	return nil
}

// SetQuantity принимает значения меньше 1 как 1.
func (w *Wizard) SetQuantity(n int) error {
	st, err := w.sizeSelected()
	if err != nil {
		return err
	}
	st.Quantity = max(n, 1)
	w.state = st
	return nil
}

// ToggleService добавляет услугу в конец списка или убирает её.
func (w *Wizard) ToggleService(id string) error {
	st, err := w.sizeSelected()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(st.Services, func(s calculator.Service) bool { return s.ID == id })
	if i >= 0 {
		st.Services = slices.Delete(slices.Clone(st.Services), i, i+1)
		w.state = st
		return nil
	}
	svc, ok := w.view.FindService(id)
	if !ok {
		return fmt.Errorf("%w: service %q", ErrUnknownOption, id)
	}
	st.Services = append(slices.Clone(st.Services), svc)
	w.state = st
	return nil
}

// Current — текущая позиция с ценой, если размер уже выбран.
func (w *Wizard) Current() (Selection, bool) {
	st, err := w.sizeSelected()
	if err != nil {
		return Selection{}, false
	}
	return newSelection(st), true
}

func newSelection(st SizeSelected) Selection {
	sel := Selection{
		Part:     bare(st.Part),
		Material: st.Material,
		Size:     st.Size,
		Quantity: st.Quantity,
		Services: slices.Clone(st.Services),
	}
	if sel.Services == nil {
		sel.Services = []calculator.Service{}
	}
	sel.Reprice()
	return sel
}

// Reset возвращает мастер к выбору детали, черновик не трогает.
func (w *Wizard) Reset() { w.state = NoPartSelected{} }

/* Черновик заказа */

// AddToDraft добавляет текущую позицию в черновик и сбрасывает мастер.
func (w *Wizard) AddToDraft() (Selection, error) {
	st, err := w.sizeSelected()
	if err != nil {
		return Selection{}, err
	}
	sel := newSelection(st)
	w.draft = append(w.draft, sel)
	w.Reset()
	return sel, nil
}

func (w *Wizard) Draft() []Selection { return slices.Clone(w.draft) }

func (w *Wizard) Total() decimal.Decimal { return DraftTotal(w.draft) }

func (w *Wizard) RemoveSelection(i int) error {
	if i < 0 || i >= len(w.draft) {
		return fmt.Errorf("%w: %d", ErrIndex, i)
	}
	w.draft = slices.Delete(w.draft, i, i+1)
	return nil
}

// UpdateSelectionQuantity меняет количество позиции и пересчитывает только её.
func (w *Wizard) UpdateSelectionQuantity(i, quantity int) error {
	if i < 0 || i >= len(w.draft) {
		return fmt.Errorf("%w: %d", ErrIndex, i)
	}
	w.draft[i].Quantity = max(quantity, 1)
	w.draft[i].Reprice()
	return nil
}

// ClearDraft очищает черновик; текущий выбор в мастере остаётся.
func (w *Wizard) ClearDraft() { w.draft = nil }

// Submit передаёт непустой черновик в send. Если send вернул nil,
// черновик очищается и мастер сбрасывается. Пустой черновик — no-op.
func (w *Wizard) Submit(send func(Submission) error) (bool, error) {
	if len(w.draft) == 0 {
		return false, nil
	}
	sub := Submission{
		Selections: slices.Clone(w.draft),
		TotalPrice: w.Total(),
		Source:     SourceCalculator,
	}
	if err := send(sub); err != nil {
		return false, err
	}
	w.ClearDraft()
	w.Reset()
	return true, nil
}

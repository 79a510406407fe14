package wizard

import "github.com/Spok95/monument-calc/internal/domain/calculator"

type Step string

const (
	StepNoPart   Step = "no_part"
	StepPart     Step = "part"
	StepMaterial Step = "material"
	StepSize     Step = "size" // можно менять количество и услуги, позицию можно добавить
)

// State — шаг мастера. Каждый шаг хранит ровно то, что уже выбрано,
// поэтому «размер без детали» не выразить.
type State interface {
	Step() Step
	sealed()
}

type NoPartSelected struct{}

type PartSelected struct {
	Part calculator.Part
}

type MaterialSelected struct {
	Part     calculator.Part
	Material calculator.Material
}

type SizeSelected struct {
	Part     calculator.Part
	Material calculator.Material
	Size     calculator.Size
	Quantity int
	Services []calculator.Service // в порядке включения
}

func (NoPartSelected) Step() Step   { return StepNoPart }
func (PartSelected) Step() Step     { return StepPart }
func (MaterialSelected) Step() Step { return StepMaterial }
func (SizeSelected) Step() Step     { return StepSize }

func (NoPartSelected) sealed()   {}
func (PartSelected) sealed()     {}
func (MaterialSelected) sealed() {}
func (SizeSelected) sealed()     {}

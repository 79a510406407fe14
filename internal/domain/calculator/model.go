package calculator

import "github.com/shopspring/decimal"

// Part — деталь памятника (стела, подставка, цветник). Материалы и размеры
// принадлежат детали и хранятся внутри неё.
type Part struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"isActive"`
	Order       int        `json:"order"`
	Materials   []Material `json:"materials"`
	Sizes       []Size     `json:"sizes"`
}

type Material struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Origin   string `json:"origin"`
	IsActive bool   `json:"isActive"`
	Order    int    `json:"order"`
}

// Size — размер детали; единственная сущность каталога с ценой за штуку.
type Size struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Dimensions string          `json:"dimensions"`
	Price      decimal.Decimal `json:"price"`
	IsActive   bool            `json:"isActive"`
	Order      int             `json:"order"`
}

// Service — дополнительная услуга, доступна для любой позиции.
type Service struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"isActive"`
	Order    int             `json:"order"`
}

// Catalog — весь документ каталога, читается и пишется целиком.
type Catalog struct {
	Parts    []Part    `json:"parts"`
	Services []Service `json:"services"`
}

// PartInput — данные для создания детали.
type PartInput struct {
	Name        string
	Description string
	IsActive    bool
	Order       int
}

type MaterialInput struct {
	Name     string
	Origin   string
	IsActive bool
	Order    int
}

type SizeInput struct {
	Name       string
	Dimensions string
	Price      decimal.Decimal
	IsActive   bool
	Order      int
}

type ServiceInput struct {
	Name     string
	Price    decimal.Decimal
	IsActive bool
	Order    int
}

// Clone возвращает глубокую копию каталога.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Parts:    make([]Part, len(c.Parts)),
		Services: append([]Service{}, c.Services...),
	}
	for i, p := range c.Parts {
		out.Parts[i] = p.clone()
	}
	return out
}

func (p Part) clone() Part {
	p.Materials = append([]Material{}, p.Materials...)
	p.Sizes = append([]Size{}, p.Sizes...)
	return p
}

// FindPart ищет деталь по id.
func (c Catalog) FindPart(id string) (Part, bool) {
	for _, p := range c.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return Part{}, false
}

func (c Catalog) FindService(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (p Part) FindMaterial(id string) (Material, bool) {
	for _, m := range p.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

func (p Part) FindSize(id string) (Size, bool) {
	for _, s := range p.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

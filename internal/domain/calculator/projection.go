package calculator

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Сортировки по полю order; при равенстве сохраняется исходный порядок.

func SortParts(in []Part) []Part {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Part) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

func SortMaterials(in []Material) []Material {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Material) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

func SortSizes(in []Size) []Size {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Size) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

func SortServices(in []Service) []Service {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Service) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

// UniqueMaterials — плоский список материалов всех деталей без повторов id
// (берётся первое вхождение). Отдельно не хранится.
func UniqueMaterials(c Catalog) []Material {
	all := lo.FlatMap(SortParts(c.Parts), func(p Part, _ int) []Material {
		return SortMaterials(p.Materials)
	})
	return lo.UniqBy(all, func(m Material) string { return m.ID })
}

func UniqueSizes(c Catalog) []Size {
	all := lo.FlatMap(SortParts(c.Parts), func(p Part, _ int) []Size {
		return SortSizes(p.Sizes)
	})
	return lo.UniqBy(all, func(s Size) string { return s.ID })
}

// ActiveView — витрина: только активные детали, материалы, размеры и услуги,
// всё отсортировано.
func ActiveView(c Catalog) Catalog {
	parts := lo.Filter(SortParts(c.Parts), func(p Part, _ int) bool { return p.IsActive })
	for i := range parts {
		parts[i].Materials = lo.Filter(SortMaterials(parts[i].Materials), func(m Material, _ int) bool { return m.IsActive })
		parts[i].Sizes = lo.Filter(SortSizes(parts[i].Sizes), func(s Size, _ int) bool { return s.IsActive })
	}
	services := lo.Filter(SortServices(c.Services), func(s Service, _ int) bool { return s.IsActive })
	return Catalog{Parts: parts, Services: services}
}

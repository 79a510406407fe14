package calculator

import "github.com/shopspring/decimal"

// Seed — стартовый каталог. Пишется в хранилище при первом запуске
// и при повреждённом документе.
func Seed() Catalog {
	price := decimal.RequireFromString

	return Catalog{
		Parts: []Part{
			{
				ID:          "part-stella",
				Name:        "Стелла",
				Description: "Вертикальная плита памятника",
				IsActive:    true,
				Order:       1,
				Materials: []Material{
					{ID: "mat-stella-gabbro", Name: "Габбро-диабаз", Origin: "Карелия", IsActive: true, Order: 1},
					{ID: "mat-stella-kapust", Name: "Гранит Капустинский", Origin: "Украина", IsActive: true, Order: 2},
					{ID: "mat-stella-pokost", Name: "Гранит Покостовский", Origin: "Украина", IsActive: true, Order: 3},
				},
				Sizes: []Size{
					{ID: "size-stella-small", Name: "Малая", Dimensions: "80×40×5 см", Price: price("450.00"), IsActive: true, Order: 1},
					{ID: "size-stella-std", Name: "Стандарт", Dimensions: "100×50×5 см", Price: price("682.50"), IsActive: true, Order: 2},
					{ID: "size-stella-big", Name: "Большая", Dimensions: "120×60×8 см", Price: price("980.00"), IsActive: true, Order: 3},
				},
			},
			{
				ID:          "part-base",
				Name:        "Подставка",
				Description: "Тумба под стелу",
				IsActive:    true,
				Order:       2,
				Materials: []Material{
					{ID: "mat-base-gabbro", Name: "Габбро-диабаз", Origin: "Карелия", IsActive: true, Order: 1},
					{ID: "mat-base-pokost", Name: "Гранит Покостовский", Origin: "Украина", IsActive: true, Order: 2},
				},
				Sizes: []Size{
					{ID: "size-base-std", Name: "Стандарт", Dimensions: "50×20×15 см", Price: price("320.00"), IsActive: true, Order: 1},
					{ID: "size-base-wide", Name: "Широкая", Dimensions: "60×20×15 см", Price: price("410.00"), IsActive: true, Order: 2},
				},
			},
			{
				ID:          "part-flowerbed",
				Name:        "Цветник",
				Description: "Ограждение цветника",
				IsActive:    true,
				Order:       3,
				Materials: []Material{
					{ID: "mat-flowerbed-gabbro", Name: "Габбро-диабаз", Origin: "Карелия", IsActive: true, Order: 1},
				},
				Sizes: []Size{
					{ID: "size-flowerbed-100", Name: "100×50", Dimensions: "100×50×8 см", Price: price("280.00"), IsActive: true, Order: 1},
					{ID: "size-flowerbed-120", Name: "120×60", Dimensions: "120×60×8 см", Price: price("350.00"), IsActive: true, Order: 2},
				},
			},
		},
		Services: []Service{
			{ID: "svc-engraving-text", Name: "Гравировка текста", Price: price("145.00"), IsActive: true, Order: 1},
			{ID: "svc-engraving-portrait", Name: "Гравировка портрета", Price: price("390.00"), IsActive: true, Order: 2},
			{ID: "svc-installation", Name: "Установка", Price: price("250.00"), IsActive: true, Order: 3},
			{ID: "svc-delivery", Name: "Доставка", Price: price("120.00"), IsActive: true, Order: 4},
		},
	}
}

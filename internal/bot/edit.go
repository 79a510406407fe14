package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

// Что правим в каталоге
const (
	kindPart     = "part"
	kindMaterial = "material"
	kindSize     = "size"
	kindService  = "service"
)

// Поля
const (
	fieldName   = "name"
	fieldDesc   = "desc"
	fieldOrigin = "origin"
	fieldDim    = "dim"
	fieldPrice  = "price"
	fieldOrder  = "order"
	fieldNew    = "new" // создание: значения через «;»
)

var errBadInput = errors.New("bad input")

// EditTarget — ожидаемый ввод админа, хранится в payload["edit"].
type EditTarget struct {
	Kind   string `json:"kind"`
	Field  string `json:"field"`
	PartID string `json:"part_id,omitempty"`
	ID     string `json:"id,omitempty"`
}

// editPrompt — подсказка для ввода значения.
func editPrompt(t EditTarget) string {
	if t.Field == fieldNew {
		switch t.Kind {
		case kindPart:
			return "Введите название новой детали:"
		case kindMaterial:
			return "Введите материал в формате «Название; Происхождение» (происхождение можно опустить):"
		case kindSize:
			return "Введите размер в формате «Название; Габариты; Цена», например «Стандарт; 100×50×8 см; 682,50»:"
		case kindService:
			return "Введите услугу в формате «Название; Цена»:"
		}
	}
	switch t.Field {
	case fieldName:
		return "Введите новое название:"
	case fieldDesc:
		return "Введите описание (или «-», чтобы очистить):"
	case fieldOrigin:
		return "Введите происхождение камня (или «-», чтобы очистить):"
	case fieldDim:
		return "Введите габариты, например «100×50×8 см»:"
	case fieldPrice:
		return "Введите цену в рублях, например 682,50:"
	case fieldOrder:
		return "Введите порядковый номер (целое число, меньше — выше в списке):"
	}
	return "Введите значение:"
}

// applyEdit применяет введённый админом текст к каталогу.
func applyEdit(ctx context.Context, c *calculator.CatalogService, t EditTarget, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty value", errBadInput)
	}
	if t.Field == fieldNew {
		return createFromText(ctx, c, t, text)
	}

	switch t.Kind {
	case kindPart:
		p, err := c.Part(ctx, t.ID)
		if err != nil {
			return err
		}
		switch t.Field {
		case fieldName:
			p.Name = text
		case fieldDesc:
			p.Description = clearable(text)
		case fieldOrder:
			if p.Order, err = parseOrder(text); err != nil {
				return err
			}
		default:
			return unknownField(t)
		}
		return c.UpdatePart(ctx, p)

	case kindMaterial:
		p, err := c.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		m, ok := p.FindMaterial(t.ID)
		if !ok {
			return fmt.Errorf("%w: material %q", calculator.ErrNotFound, t.ID)
		}
		switch t.Field {
		case fieldName:
			m.Name = text
		case fieldOrigin:
			m.Origin = clearable(text)
		case fieldOrder:
			if m.Order, err = parseOrder(text); err != nil {
				return err
			}
		default:
			return unknownField(t)
		}
		return c.UpdateMaterial(ctx, t.PartID, m)

	case kindSize:
		p, err := c.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		sz, ok := p.FindSize(t.ID)
		if !ok {
			return fmt.Errorf("%w: size %q", calculator.ErrNotFound, t.ID)
		}
		switch t.Field {
		case fieldName:
			sz.Name = text
		case fieldDim:
			sz.Dimensions = clearable(text)
		case fieldPrice:
			if sz.Price, err = parsePrice(text); err != nil {
				return err
			}
		case fieldOrder:
			if sz.Order, err = parseOrder(text); err != nil {
				return err
			}
		default:
			return unknownField(t)
		}
		return c.UpdateSize(ctx, t.PartID, sz)

	case kindService:
		svc, err := c.ServiceByID(ctx, t.ID)
		if err != nil {
			return err
		}
		switch t.Field {
		case fieldName:
			svc.Name = text
		case fieldPrice:
			if svc.Price, err = parsePrice(text); err != nil {
				return err
			}
		case fieldOrder:
			if svc.Order, err = parseOrder(text); err != nil {
				return err
			}
		default:
			return unknownField(t)
		}
		return c.UpdateService(ctx, svc)
	}
	return unknownField(t)
}

// createFromText: новые записи создаются активными и встают в конец списка.
func createFromText(ctx context.Context, c *calculator.CatalogService, t EditTarget, text string) error {
	parts := splitFields(text)

	switch t.Kind {
	case kindPart:
		list, err := c.ListParts(ctx)
		if err != nil {
			return err
		}
		_, err = c.AddPart(ctx, calculator.PartInput{Name: parts[0], IsActive: true, Order: nextOrder(len(list))})
		return err

	case kindMaterial:
		p, err := c.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		in := calculator.MaterialInput{Name: parts[0], IsActive: true, Order: nextOrder(len(p.Materials))}
		if len(parts) > 1 {
			in.Origin = parts[1]
		}
		_, err = c.AddMaterial(ctx, t.PartID, in)
		return err

	case kindSize:
		if len(parts) != 3 {
			return fmt.Errorf("%w: want «name; dimensions; price»", errBadInput)
		}
		price, err := parsePrice(parts[2])
		if err != nil {
			return err
		}
		p, err := c.Part(ctx, t.PartID)
		if err != nil {
			return err
		}
		_, err = c.AddSize(ctx, t.PartID, calculator.SizeInput{
			Name: parts[0], Dimensions: parts[1], Price: price,
			IsActive: true, Order: nextOrder(len(p.Sizes)),
		})
		return err

	case kindService:
		if len(parts) != 2 {
			return fmt.Errorf("%w: want «name; price»", errBadInput)
		}
		price, err := parsePrice(parts[1])
		if err != nil {
			return err
		}
		list, err := c.ListServices(ctx)
		if err != nil {
			return err
		}
		_, err = c.AddService(ctx, calculator.ServiceInput{
			Name: parts[0], Price: price, IsActive: true, Order: nextOrder(len(list)),
		})
		return err
	}
	return unknownField(t)
}

func splitFields(text string) []string {
	raw := strings.Split(text, ";")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func nextOrder(n int) int { return n + 1 }

// clearable: «-» очищает необязательное поле.
func clearable(text string) string {
	if text == "-" {
		return ""
	}
	return text
}

// parsePrice принимает и точку, и запятую; пробелы между разрядами игнорируются.
func parsePrice(text string) (decimal.Decimal, error) {
	s := strings.NewReplacer(" ", "", ",", ".", "руб.", "", "₽", "").Replace(strings.TrimSpace(text))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q", errBadInput, text)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative price", errBadInput)
	}
	return d.Round(2), nil
}

func parseOrder(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: order %q", errBadInput, text)
	}
	return n, nil
}

func unknownField(t EditTarget) error {
	return fmt.Errorf("%w: %s.%s", errBadInput, t.Kind, t.Field)
}

// editErrorText — ответ админу на ошибку ввода.
func editErrorText(err error) string {
	switch {
	case errors.Is(err, errBadInput):
		return "Не удалось разобрать значение, попробуйте ещё раз."
	case errors.Is(err, calculator.ErrValidation):
		return "Значение не прошло проверку: название не может быть пустым, цена не может быть отрицательной."
	case errors.Is(err, calculator.ErrNotFound):
		return "Запись уже удалена."
	default:
		return "Ошибка сохранения, попробуйте позже."
	}
}

package pricelist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/monument-calc/internal/domain/calculator"
)

const (
	KindSize    = "size"
	KindService = "service"

	sheetName = "prices"
	priceCol  = 6 // индекс колонки price
)

var header = []any{"kind", "part_id", "part_name", "id", "name", "dimensions", "price"}

var ErrFormat = errors.New("pricelist: bad file")

// RowError — ошибка в конкретной строке файла (нумерация как в Excel).
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return ErrFormat }

// Export выгружает цены всех размеров и услуг, включая скрытые.
func Export(c calculator.Catalog) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	put := func(vals []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheetName, cell, &vals)
	}

	for _, p := range calculator.SortParts(c.Parts) {
		for _, sz := range calculator.SortSizes(p.Sizes) {
			if err := put([]any{KindSize, p.ID, p.Name, sz.ID, sz.Name, sz.Dimensions, sz.Price.StringFixed(2)}); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range calculator.SortServices(c.Services) {
		if err := put([]any{KindService, "", "", s.ID, s.Name, "", s.Price.StringFixed(2)}); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "C", "F", 24); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Changes — разобранный файл: обновления цен и статистика.
type Changes struct {
	Updates   []calculator.PriceUpdate
	Rows      int // строк с данными
	Unchanged int // пустая цена или цена как в каталоге
}

// Import читает отредактированный прайс и сверяет его с каталогом.
// Пустая ячейка price оставляет старую цену. Каталог не меняется:
// обновления применяет вызывающий (CatalogService.UpdatePrices).
func Import(r io.Reader, c calculator.Catalog) (Changes, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Changes{}, errors.Join(ErrFormat, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return Changes{}, errors.Join(ErrFormat, err)
	}
	if len(rows) < 2 {
		return Changes{}, fmt.Errorf("%w: no data rows", ErrFormat)
	}
	if len(rows[0]) < len(header) || strings.TrimSpace(rows[0][priceCol]) != "price" {
		return Changes{}, fmt.Errorf("%w: unexpected header", ErrFormat)
	}

	var ch Changes
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		cell := func(j int) string {
			if j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}
		kind, partID, id, priceStr := cell(0), cell(1), cell(3), cell(priceCol)
		if kind == "" && id == "" {
			continue
		}
		ch.Rows++

		current, err := lookup(c, kind, partID, id)
		if err != nil {
			return Changes{}, &RowError{Row: i + 1, Err: err}
		}
		if priceStr == "" {
			ch.Unchanged++
			continue
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(priceStr, ",", "."))
		if err != nil || price.IsNegative() {
			return Changes{}, &RowError{Row: i + 1, Err: fmt.Errorf("bad price %q", priceStr)}
		}
		if price.Equal(current) {
			ch.Unchanged++
			continue
		}
		if kind == KindService {
			partID = ""
		}
		ch.Updates = append(ch.Updates, calculator.PriceUpdate{PartID: partID, ID: id, Price: price})
	}
	return ch, nil
}

func lookup(c calculator.Catalog, kind, partID, id string) (decimal.Decimal, error) {
	switch kind {
	case KindSize:
		p, ok := c.FindPart(partID)
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown part %q", partID)
		}
		sz, ok := p.FindSize(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown size %q in part %q", id, partID)
		}
		return sz.Price, nil
	case KindService:
		s, ok := c.FindService(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown service %q", id)
		}
		return s.Price, nil
	}
	return decimal.Zero, fmt.Errorf("unknown kind %q", kind)
}

package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metrics — счётчики, которые сервис отдаёт наружу.
type Metrics interface {
	CatalogReseeded(reason string)
	CatalogStoreError(op string)
}

type noopMetrics struct{}

func (noopMetrics) CatalogReseeded(string)   {}
func (noopMetrics) CatalogStoreError(string) {}

// Причины пересоздания каталога из seed.
const (
	ReasonUndecodable      = "undecodable"
	ReasonMissingParts     = "missing_parts"
	ReasonMissingServices  = "missing_services"
	ReasonPartWithoutLists = "part_without_materials_or_sizes"
)

// CatalogService — каталог калькулятора. Каждая операция читает документ
// целиком, меняет его и сохраняет целиком; операции сериализуются мьютексом.
type CatalogService struct {
	store   Store
	log     *slog.Logger
	metrics Metrics
	newID   func() string

	mu sync.Mutex
}

func NewCatalogService(store Store, log *slog.Logger, m Metrics) *CatalogService {
	if m == nil {
		m = noopMetrics{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &CatalogService{store: store, log: log, metrics: m, newID: uuid.NewString}
}

/* Документ */

// LoadCatalog возвращает сохранённый каталог. Если документа нет или он
// структурно повреждён, документ заменяется seed-данными целиком: без
// частичного восстановления. Пересоздание пишется в лог (WARN) и в метрику.
func (s *CatalogService) LoadCatalog(ctx context.Context) (Catalog, error) {
	const op = "calculator.LoadCatalog"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *CatalogService) SaveCatalog(ctx context.Context, c Catalog) error {
	const op = "calculator.SaveCatalog"

	s.mu.Lock()
	defer s.mu.Unlock()

	normalize(&c)
	if err := s.save(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActiveCatalog — витринное представление для калькулятора.
func (s *CatalogService) ActiveCatalog(ctx context.Context) (Catalog, error) {
	c, err := s.LoadCatalog(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return ActiveView(c), nil
}

func (s *CatalogService) load(ctx context.Context) (Catalog, error) {
	raw, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoDocument) {
		s.log.Info("catalog is empty, writing seed data")
		return s.reseed(ctx)
	}
	if err != nil {
		s.metrics.CatalogStoreError("load")
		return Catalog{}, errors.Join(ErrStorage, err)
	}

	c, reason := decodeCatalog(raw)
	if reason != "" {
		s.log.Warn("stored catalog is corrupted, discarding it and writing seed data",
			"reason", reason,
			"bytes", len(raw),
		)
		s.metrics.CatalogReseeded(reason)
		return s.reseed(ctx)
	}
	return c, nil
}

func (s *CatalogService) reseed(ctx context.Context) (Catalog, error) {
	seed := Seed()
	if err := s.save(ctx, seed); err != nil {
		return Catalog{}, err
	}
	return seed, nil
}

func (s *CatalogService) save(ctx context.Context, c Catalog) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := s.store.Save(ctx, raw); err != nil {
		s.metrics.CatalogStoreError("save")
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// decodeCatalog разбирает документ и проверяет структуру.
// Пустая причина означает валидный документ.
func decodeCatalog(raw []byte) (Catalog, string) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return Catalog{}, ReasonUndecodable
	}
	// отсутствующий ключ и null дают nil, пустой массив — не nil
	if c.Parts == nil {
		return Catalog{}, ReasonMissingParts
	}
	if c.Services == nil {
		return Catalog{}, ReasonMissingServices
	}
	for _, p := range c.Parts {
		if p.Materials == nil || p.Sizes == nil {
			return Catalog{}, ReasonPartWithoutLists
		}
	}
	return c, ""
}

// normalize заменяет nil-списки пустыми, чтобы сохранённый документ
// не считался повреждённым при следующем чтении.
func normalize(c *Catalog) {
	if c.Parts == nil {
		c.Parts = []Part{}
	}
	if c.Services == nil {
		c.Services = []Service{}
	}
	for i := range c.Parts {
		if c.Parts[i].Materials == nil {
			c.Parts[i].Materials = []Material{}
		}
		if c.Parts[i].Sizes == nil {
			c.Parts[i].Sizes = []Size{}
		}
	}
}

// mutate применяет fn к свежей копии каталога и сохраняет результат.
// При ошибке fn ничего не пишется.
func (s *CatalogService) mutate(ctx context.Context, op string, fn func(c *Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(&c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	normalize(&c)
	if err := s.save(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

/* Чтение */

func (s *CatalogService) ListParts(ctx context.Context) ([]Part, error) {
	c, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return SortParts(c.Parts), nil
}

func (s *CatalogService) ListServices(ctx context.Context) ([]Service, error) {
	c, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return SortServices(c.Services), nil
}

func (s *CatalogService) Part(ctx context.Context, id string) (Part, error) {
	c, err := s.LoadCatalog(ctx)
	if err != nil {
		return Part{}, err
	}
	p, ok := c.FindPart(id)
	if !ok {
		return Part{}, partNotFound(id)
	}
	return p, nil
}

func (s *CatalogService) ServiceByID(ctx context.Context, id string) (Service, error) {
	c, err := s.LoadCatalog(ctx)
	if err != nil {
		return Service{}, err
	}
	svc, ok := c.FindService(id)
	if !ok {
		return Service{}, fmt.Errorf("%w: service %q", ErrNotFound, id)
	}
	return svc, nil
}

func (s *CatalogService) MaterialsForPart(ctx context.Context, partID string) ([]Material, error) {
	p, err := s.Part(ctx, partID)
	if err != nil {
		return nil, err
	}
	return SortMaterials(p.Materials), nil
}

func (s *CatalogService) SizesForPart(ctx context.Context, partID string) ([]Size, error) {
	p, err := s.Part(ctx, partID)
	if err != nil {
		return nil, err
	}
	return SortSizes(p.Sizes), nil
}

/* Детали */

func (s *CatalogService) AddPart(ctx context.Context, in PartInput) (Part, error) {
	p := Part{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		IsActive:    in.IsActive,
		Order:       in.Order,
		Materials:   []Material{},
		Sizes:       []Size{},
	}
	err := s.mutate(ctx, "calculator.AddPart", func(c *Catalog) error {
		if err := validateName(p.Name); err != nil {
			return err
		}
		c.Parts = append(c.Parts, p)
		return nil
	})
	if err != nil {
		return Part{}, err
	}
	return p, nil
}

// UpdatePart заменяет деталь с тем же id целиком, включая её материалы и размеры.
func (s *CatalogService) UpdatePart(ctx context.Context, p Part) error {
	p.Name = strings.TrimSpace(p.Name)
	return s.mutate(ctx, "calculator.UpdatePart", func(c *Catalog) error {
		i, err := partIndex(c, p.ID)
		if err != nil {
			return err
		}
		if err := validatePart(c, p); err != nil {
			return err
		}
		c.Parts[i] = p.clone()
		return nil
	})
}

func (s *CatalogService) DeletePart(ctx context.Context, id string) error {
	return s.mutate(ctx, "calculator.DeletePart", func(c *Catalog) error {
		i, err := partIndex(c, id)
		if err != nil {
			return err
		}
		c.Parts = append(c.Parts[:i], c.Parts[i+1:]...)
		return nil
	})
}

/* Материалы */

func (s *CatalogService) AddMaterial(ctx context.Context, partID string, in MaterialInput) (Material, error) {
	m := Material{
		ID:       s.newID(),
		Name:     strings.TrimSpace(in.Name),
		Origin:   strings.TrimSpace(in.Origin),
		IsActive: in.IsActive,
		Order:    in.Order,
	}
	err := s.mutate(ctx, "calculator.AddMaterial", func(c *Catalog) error {
		if err := validateName(m.Name); err != nil {
			return err
		}
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		c.Parts[i].Materials = append(c.Parts[i].Materials, m)
		return nil
	})
	if err != nil {
		return Material{}, err
	}
	return m, nil
}

// UpdateMaterial ищет материал только внутри указанной детали.
func (s *CatalogService) UpdateMaterial(ctx context.Context, partID string, m Material) error {
	m.Name = strings.TrimSpace(m.Name)
	return s.mutate(ctx, "calculator.UpdateMaterial", func(c *Catalog) error {
		if err := validateName(m.Name); err != nil {
			return err
		}
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		j := materialIndex(c.Parts[i], m.ID)
		if j < 0 {
			return fmt.Errorf("%w: material %q in part %q", ErrNotFound, m.ID, partID)
		}
		c.Parts[i].Materials[j] = m
		return nil
	})
}

func (s *CatalogService) DeleteMaterial(ctx context.Context, partID, id string) error {
	return s.mutate(ctx, "calculator.DeleteMaterial", func(c *Catalog) error {
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		j := materialIndex(c.Parts[i], id)
		if j < 0 {
			return fmt.Errorf("%w: material %q in part %q", ErrNotFound, id, partID)
		}
		mats := c.Parts[i].Materials
		c.Parts[i].Materials = append(mats[:j], mats[j+1:]...)
		return nil
	})
}

/* Размеры */

func (s *CatalogService) AddSize(ctx context.Context, partID string, in SizeInput) (Size, error) {
	sz := Size{
		ID:         s.newID(),
		Name:       strings.TrimSpace(in.Name),
		Dimensions: strings.TrimSpace(in.Dimensions),
		Price:      in.Price,
		IsActive:   in.IsActive,
		Order:      in.Order,
	}
	err := s.mutate(ctx, "calculator.AddSize", func(c *Catalog) error {
		if err := validatePriced(sz.Name, sz.Price); err != nil {
			return err
		}
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		c.Parts[i].Sizes = append(c.Parts[i].Sizes, sz)
		return nil
	})
	if err != nil {
		return Size{}, err
	}
	return sz, nil
}

// UpdateSize ищет размер только внутри указанной детали.
func (s *CatalogService) UpdateSize(ctx context.Context, partID string, sz Size) error {
	sz.Name = strings.TrimSpace(sz.Name)
	return s.mutate(ctx, "calculator.UpdateSize", func(c *Catalog) error {
		if err := validatePriced(sz.Name, sz.Price); err != nil {
			return err
		}
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		j := sizeIndex(c.Parts[i], sz.ID)
		if j < 0 {
			return fmt.Errorf("%w: size %q in part %q", ErrNotFound, sz.ID, partID)
		}
		c.Parts[i].Sizes[j] = sz
		return nil
	})
}

func (s *CatalogService) DeleteSize(ctx context.Context, partID, id string) error {
	return s.mutate(ctx, "calculator.DeleteSize", func(c *Catalog) error {
		i, err := partIndex(c, partID)
		if err != nil {
			return err
		}
		j := sizeIndex(c.Parts[i], id)
		if j < 0 {
			return fmt.Errorf("%w: size %q in part %q", ErrNotFound, id, partID)
		}
		sizes := c.Parts[i].Sizes
		c.Parts[i].Sizes = append(sizes[:j], sizes[j+1:]...)
		return nil
	})
}

/* Услуги */

func (s *CatalogService) AddService(ctx context.Context, in ServiceInput) (Service, error) {
	svc := Service{
		ID:       s.newID(),
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		IsActive: in.IsActive,
		Order:    in.Order,
	}
	err := s.mutate(ctx, "calculator.AddService", func(c *Catalog) error {
		if err := validatePriced(svc.Name, svc.Price); err != nil {
			return err
		}
		c.Services = append(c.Services, svc)
		return nil
	})
	if err != nil {
		return Service{}, err
	}
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, svc Service) error {
	svc.Name = strings.TrimSpace(svc.Name)
	return s.mutate(ctx, "calculator.UpdateService", func(c *Catalog) error {
		if err := validatePriced(svc.Name, svc.Price); err != nil {
			return err
		}
		j := serviceIndex(c, svc.ID)
		if j < 0 {
			return fmt.Errorf("%w: service %q", ErrNotFound, svc.ID)
		}
		c.Services[j] = svc
		return nil
	})
}

func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	return s.mutate(ctx, "calculator.DeleteService", func(c *Catalog) error {
		j := serviceIndex(c, id)
		if j < 0 {
			return fmt.Errorf("%w: service %q", ErrNotFound, id)
		}
		c.Services = append(c.Services[:j], c.Services[j+1:]...)
		return nil
	})
}

/* Цены */

// PriceUpdate — новая цена размера (PartID и ID размера) или услуги (PartID пуст).
type PriceUpdate struct {
	PartID string
	ID     string
	Price  decimal.Decimal
}

// UpdatePrices применяет пачку цен одной записью документа: либо все, либо ни одной.
// Возвращает число реально изменившихся цен.
func (s *CatalogService) UpdatePrices(ctx context.Context, ups []PriceUpdate) (int, error) {
	changed := 0
	err := s.mutate(ctx, "calculator.UpdatePrices", func(c *Catalog) error {
		for _, u := range ups {
			if u.Price.IsNegative() {
				return errors.Join(ErrValidation, fmt.Errorf("price must be >= 0, got %s", u.Price))
			}
			if u.PartID == "" {
				j := serviceIndex(c, u.ID)
				if j < 0 {
					return fmt.Errorf("%w: service %q", ErrNotFound, u.ID)
				}
				if !c.Services[j].Price.Equal(u.Price) {
					c.Services[j].Price = u.Price
					changed++
				}
				continue
			}
			i, err := partIndex(c, u.PartID)
			if err != nil {
				return err
			}
			j := sizeIndex(c.Parts[i], u.ID)
			if j < 0 {
				return fmt.Errorf("%w: size %q in part %q", ErrNotFound, u.ID, u.PartID)
			}
			if !c.Parts[i].Sizes[j].Price.Equal(u.Price) {
				c.Parts[i].Sizes[j].Price = u.Price
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

/* helpers */

func partNotFound(id string) error {
	return fmt.Errorf("%w: part %q", ErrNotFound, id)
}

func partIndex(c *Catalog, id string) (int, error) {
	for i, p := range c.Parts {
		if p.ID == id {
			return i, nil
		}
	}
	return -1, partNotFound(id)
}

func materialIndex(p Part, id string) int {
	for j, m := range p.Materials {
		if m.ID == id {
			return j
		}
	}
	return -1
}

func sizeIndex(p Part, id string) int {
	for j, sz := range p.Sizes {
		if sz.ID == id {
			return j
		}
	}
	return -1
}

func serviceIndex(c *Catalog, id string) int {
	for j, svc := range c.Services {
		if svc.ID == id {
			return j
		}
	}
	return -1
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Join(ErrValidation, errors.New("name must be non-empty"))
	}
	return nil
}

func validatePriced(name string, price decimal.Decimal) error {
	if err := validateName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return errors.Join(ErrValidation, fmt.Errorf("price must be >= 0, got %s", price))
	}
	return nil
}

// validatePart проверяет заменяющую деталь: id материалов и размеров
// непустые и не встречаются ни в ней самой, ни в других деталях.
func validatePart(c *Catalog, p Part) error {
	if err := validateName(p.Name); err != nil {
		return err
	}

	taken := make(map[string]struct{})
	for _, other := range c.Parts {
		if other.ID == p.ID {
			continue
		}
		taken[other.ID] = struct{}{}
		for _, m := range other.Materials {
			taken[m.ID] = struct{}{}
		}
		for _, sz := range other.Sizes {
			taken[sz.ID] = struct{}{}
		}
	}
	for _, svc := range c.Services {
		taken[svc.ID] = struct{}{}
	}
	claim := func(id string) error {
		if strings.TrimSpace(id) == "" {
			return errors.Join(ErrValidation, errors.New("id must be non-empty"))
		}
		if _, dup := taken[id]; dup {
			return errors.Join(ErrValidation, fmt.Errorf("id %q is already used", id))
		}
		taken[id] = struct{}{}
		return nil
	}

	for _, m := range p.Materials {
		if err := validateName(m.Name); err != nil {
			return err
		}
		if err := claim(m.ID); err != nil {
			return err
		}
	}
	for _, sz := range p.Sizes {
		if err := validatePriced(sz.Name, sz.Price); err != nil {
			return err
		}
		if err := claim(sz.ID); err != nil {
			return err
		}
	}
	return nil
}

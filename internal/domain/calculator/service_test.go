package calculator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	reseeds     []string
	storeErrors []string
}

func (m *recordingMetrics) CatalogReseeded(reason string) { m.reseeds = append(m.reseeds, reason) }
func (m *recordingMetrics) CatalogStoreError(op string)   { m.storeErrors = append(m.storeErrors, op) }

type brokenStore struct{ err error }

func (s brokenStore) Load(context.Context) ([]byte, error) { return nil, s.err }
func (s brokenStore) Save(context.Context, []byte) error   { return s.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store Store) (*CatalogService, *recordingMetrics) {
	t.Helper()
	m := &recordingMetrics{}
	return NewCatalogService(store, discardLogger(), m), m
}

func mustLoadRaw(t *testing.T, s Store) []byte {
	t.Helper()
	raw, err := s.Load(context.Background())
	require.NoError(t, err)
	return raw
}

func TestLoadCatalogSeedsAndRecovers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stored     []byte
		wantReason string
	}{
		{name: "absent document", stored: nil},
		{name: "undecodable document", stored: []byte(`{"parts": [`), wantReason: ReasonUndecodable},
		{name: "missing parts key", stored: []byte(`{"services": []}`), wantReason: ReasonMissingParts},
		{
			name:       "missing services key",
			stored:     []byte(`{"parts": [{"id": "p1", "name": "X", "materials": [], "sizes": []}]}`),
			wantReason: ReasonMissingServices,
		},
		{
			name:       "part without materials",
			stored:     []byte(`{"parts": [{"id": "p1", "name": "X", "sizes": []}], "services": []}`),
			wantReason: ReasonPartWithoutLists,
		},
		{
			name:       "part with null sizes",
			stored:     []byte(`{"parts": [{"id": "p1", "name": "X", "materials": [], "sizes": null}], "services": []}`),
			wantReason: ReasonPartWithoutLists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemStore()
			if tt.stored != nil {
				store = NewMemStoreWith(tt.stored)
			}
			svc, m := newTestService(t, store)

			c, err := svc.LoadCatalog(context.Background())
			require.NoError(t, err)
			assert.Len(t, c.Services, 4)
			assert.Len(t, c.Parts, len(Seed().Parts))

			// seed записан как новое состояние
			reloaded, reason := decodeCatalog(mustLoadRaw(t, store))
			assert.Empty(t, reason)
			assert.Len(t, reloaded.Services, 4)

			if tt.wantReason == "" {
				assert.Empty(t, m.reseeds)
			} else {
				assert.Equal(t, []string{tt.wantReason}, m.reseeds)
			}
		})
	}
}

func TestLoadCatalogKeepsValidDocument(t *testing.T) {
	t.Parallel()

	store := NewMemStoreWith([]byte(`{"parts": [], "services": [{"id": "s1", "name": "Мойка", "price": "10", "isActive": true, "order": 1}]}`))
	svc, m := newTestService(t, store)

	c, err := svc.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Parts)
	require.Len(t, c.Services, 1)
	assert.Equal(t, "Мойка", c.Services[0].Name)
	assert.Empty(t, m.reseeds)
}

func TestSaveLoadRoundTripIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	c, err := svc.LoadCatalog(ctx)
	require.NoError(t, err)
	first := mustLoadRaw(t, store)

	require.NoError(t, svc.SaveCatalog(ctx, c))
	assert.JSONEq(t, string(first), string(mustLoadRaw(t, store)))

	c, err = svc.LoadCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SaveCatalog(ctx, c))
	assert.JSONEq(t, string(first), string(mustLoadRaw(t, store)))
}

func TestStorageErrors(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t, brokenStore{err: errors.New("disk is gone")})

	_, err := svc.LoadCatalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorContains(t, err, "disk is gone")
	assert.Equal(t, []string{"load"}, m.storeErrors)

	_, err = svc.AddService(context.Background(), ServiceInput{Name: "Доставка"})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestListPartsSortedAndStable(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.SaveCatalog(ctx, Catalog{
		Parts: []Part{
			{ID: "c", Name: "C", Order: 2},
			{ID: "a", Name: "A", Order: 1},
			{ID: "d", Name: "D", Order: 2},
			{ID: "b", Name: "B", Order: 1},
		},
		Services: []Service{
			{ID: "s2", Name: "S2", Order: 5},
			{ID: "s1", Name: "S1", Order: 0},
			{ID: "s3", Name: "S3", Order: 5},
		},
	}))

	parts, err := svc.ListParts(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)

	services, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", services[0].ID)
	assert.Equal(t, "s2", services[1].ID)
	assert.Equal(t, "s3", services[2].ID)
}

func TestMaterialsAndSizesForPart(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, NewMemStore())
	ctx := context.Background()

	p, err := svc.AddPart(ctx, PartInput{Name: "Плита", IsActive: true})
	require.NoError(t, err)

	mats, err := svc.MaterialsForPart(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, mats)
	assert.Empty(t, mats)

	_, err = svc.AddSize(ctx, p.ID, SizeInput{Name: "B", Price: decimal.NewFromInt(2), Order: 2})
	require.NoError(t, err)
	_, err = svc.AddSize(ctx, p.ID, SizeInput{Name: "A", Price: decimal.NewFromInt(1), Order: 1})
	require.NoError(t, err)

	sizes, err := svc.SizesForPart(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, "A", sizes[0].Name)

	_, err = svc.SizesForPart(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartCRUD(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, NewMemStore())
	ctx := context.Background()
	name := gofakeit.ProductName()

	p, err := svc.AddPart(ctx, PartInput{Name: "  " + name + " ", Order: 7, IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, name, p.Name)

	got, err := svc.Part(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Order)

	// nil-списки нормализуются, документ остаётся валидным
	got.Materials = nil
	got.Sizes = nil
	got.IsActive = false
	require.NoError(t, svc.UpdatePart(ctx, got))

	got, err = svc.Part(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.NotNil(t, got.Materials)

	require.NoError(t, svc.DeletePart(ctx, p.ID))
	_, err = svc.Part(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeletePart(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePartRejectsBadEmbeddedIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	size := func(id string) Size {
		return Size{ID: id, Name: "Стандарт", Price: decimal.NewFromInt(100), IsActive: true}
	}

	tests := []struct {
		name   string
		modify func(p *Part)
	}{
		{name: "empty material id", modify: func(p *Part) {
			p.Materials = append(p.Materials, Material{Name: "Мрамор", IsActive: true})
		}},
		{name: "duplicate size id", modify: func(p *Part) {
			p.Sizes = append(p.Sizes, size(p.Sizes[0].ID))
		}},
		{name: "size id of another part", modify: func(p *Part) {
			p.Sizes = append(p.Sizes, size("size-stella-std"))
		}},
		{name: "material id of another part", modify: func(p *Part) {
			p.Materials[0].ID = "mat-stella-gabbro"
		}},
		{name: "material and size share id", modify: func(p *Part) {
			p.Sizes[0].ID = p.Materials[0].ID
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemStore()
			svc, _ := newTestService(t, store)
			p, err := svc.Part(ctx, "part-base")
			require.NoError(t, err)
			before := mustLoadRaw(t, store)

			tt.modify(&p)
			err = svc.UpdatePart(ctx, p)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, before, mustLoadRaw(t, store))
		})
	}

	t.Run("own ids are kept", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t, NewMemStore())
		p, err := svc.Part(ctx, "part-base")
		require.NoError(t, err)
		p.Name = gofakeit.ProductName()
		p.Sizes = append(p.Sizes, size("size-base-new"))
		require.NoError(t, svc.UpdatePart(ctx, p))

		got, err := svc.Part(ctx, "part-base")
		require.NoError(t, err)
		assert.Len(t, got.Sizes, len(p.Sizes))
	})
}

func TestAddPartValidation(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.LoadCatalog(ctx)
	require.NoError(t, err)
	before := mustLoadRaw(t, store)

	_, err = svc.AddPart(ctx, PartInput{Name: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddService(ctx, ServiceInput{Name: "Покраска", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, before, mustLoadRaw(t, store))
}

func TestDeleteMaterialIsScopedToPart(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.LoadCatalog(ctx)
	require.NoError(t, err)
	before := mustLoadRaw(t, store)

	// материал подставки через стелу не находится
	err = svc.DeleteMaterial(ctx, "part-stella", "mat-base-gabbro")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, mustLoadRaw(t, store))

	require.NoError(t, svc.DeleteMaterial(ctx, "part-base", "mat-base-gabbro"))
	mats, err := svc.MaterialsForPart(ctx, "part-base")
	require.NoError(t, err)
	for _, m := range mats {
		assert.NotEqual(t, "mat-base-gabbro", m.ID)
	}
}

func TestUpdateSizeWithForeignPartFails(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.LoadCatalog(ctx)
	require.NoError(t, err)
	before := mustLoadRaw(t, store)

	err = svc.UpdateSize(ctx, "part-base", Size{
		ID:    "size-stella-std",
		Name:  "Стандарт",
		Price: decimal.RequireFromString("1.00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, mustLoadRaw(t, store))
}

func TestMaterialAndSizeUpdates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, NewMemStore())
	ctx := context.Background()

	m, err := svc.AddMaterial(ctx, "part-stella", MaterialInput{Name: "Мрамор", Origin: "Италия", IsActive: true, Order: 9})
	require.NoError(t, err)

	m.Origin = "Греция"
	require.NoError(t, svc.UpdateMaterial(ctx, "part-stella", m))

	mats, err := svc.MaterialsForPart(ctx, "part-stella")
	require.NoError(t, err)
	last := mats[len(mats)-1]
	assert.Equal(t, m.ID, last.ID)
	assert.Equal(t, "Греция", last.Origin)

	err = svc.UpdateMaterial(ctx, "part-base", m)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddMaterial(ctx, "missing", MaterialInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	sz, err := svc.AddSize(ctx, "part-base", SizeInput{Name: "Узкая", Price: decimal.RequireFromString("99.90")})
	require.NoError(t, err)
	sz.Price = decimal.RequireFromString("100.10")
	require.NoError(t, svc.UpdateSize(ctx, "part-base", sz))

	sizes, err := svc.SizesForPart(ctx, "part-base")
	require.NoError(t, err)
	found := false
	for _, s := range sizes {
		if s.ID == sz.ID {
			found = true
			assert.True(t, decimal.RequireFromString("100.10").Equal(s.Price))
		}
	}
	assert.True(t, found)

	require.NoError(t, svc.DeleteSize(ctx, "part-base", sz.ID))
	err = svc.DeleteSize(ctx, "part-base", sz.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceCRUD(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, NewMemStore())
	ctx := context.Background()

	s, err := svc.AddService(ctx, ServiceInput{Name: "Фото на керамике", Price: decimal.NewFromInt(500), IsActive: true, Order: 10})
	require.NoError(t, err)

	s.Price = decimal.NewFromInt(550)
	require.NoError(t, svc.UpdateService(ctx, s))

	got, err := svc.ServiceByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(550).Equal(got.Price))

	require.NoError(t, svc.DeleteService(ctx, s.ID))
	_, err = svc.ServiceByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.UpdateService(ctx, s)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, NewMemStore())
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		m, err := svc.AddMaterial(ctx, "part-stella", MaterialInput{Name: gofakeit.Word()})
		require.NoError(t, err)
		_, dup := seen[m.ID]
		require.False(t, dup, "duplicate id %s", m.ID)
		seen[m.ID] = struct{}{}
	}
}

func TestUpdatePricesIsAllOrNothing(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	n, err := svc.UpdatePrices(ctx, []PriceUpdate{
		{PartID: "part-stella", ID: "size-stella-std", Price: decimal.RequireFromString("700")},
		{ID: "svc-delivery", Price: decimal.RequireFromString("120.00")}, // та же цена
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sizes, err := svc.SizesForPart(ctx, "part-stella")
	require.NoError(t, err)
	for _, sz := range sizes {
		if sz.ID == "size-stella-std" {
			assert.True(t, sz.Price.Equal(decimal.RequireFromString("700")))
		}
	}

	before := mustLoadRaw(t, store)
	_, err = svc.UpdatePrices(ctx, []PriceUpdate{
		{ID: "svc-delivery", Price: decimal.RequireFromString("1")},
		{PartID: "part-base", ID: "size-stella-std", Price: decimal.RequireFromString("1")},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, mustLoadRaw(t, store))

	_, err = svc.UpdatePrices(ctx, []PriceUpdate{{ID: "svc-delivery", Price: decimal.RequireFromString("-1")}})
	assert.ErrorIs(t, err, ErrValidation)
}

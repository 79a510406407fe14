package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueMaterialsFirstSeenWins(t *testing.T) {
	t.Parallel()

	c := Catalog{
		Parts: []Part{
			{ID: "p2", Order: 2, Materials: []Material{{ID: "m1", Name: "second copy"}, {ID: "m3", Name: "Мрамор"}}},
			{ID: "p1", Order: 1, Materials: []Material{{ID: "m2", Name: "Гранит", Order: 2}, {ID: "m1", Name: "Габбро", Order: 1}}},
		},
	}

	got := UniqueMaterials(c)
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "Габбро", got[0].Name)
	assert.Equal(t, "m2", got[1].ID)
	assert.Equal(t, "m3", got[2].ID)
}

func TestUniqueSizesOverSeed(t *testing.T) {
	t.Parallel()

	seed := Seed()
	total := 0
	for _, p := range seed.Parts {
		total += len(p.Sizes)
	}
	assert.Len(t, UniqueSizes(seed), total)
}

func TestActiveViewFiltersInactive(t *testing.T) {
	t.Parallel()

	c := Catalog{
		Parts: []Part{
			{ID: "hidden", IsActive: false, Materials: []Material{}, Sizes: []Size{}},
			{
				ID: "shown", IsActive: true,
				Materials: []Material{{ID: "m-off"}, {ID: "m-on", IsActive: true}},
				Sizes:     []Size{{ID: "s-on", IsActive: true, Order: 2}, {ID: "s-on-first", IsActive: true, Order: 1}},
			},
		},
		Services: []Service{{ID: "svc-off"}, {ID: "svc-on", IsActive: true}},
	}

	v := ActiveView(c)
	require.Len(t, v.Parts, 1)
	assert.Equal(t, "shown", v.Parts[0].ID)
	require.Len(t, v.Parts[0].Materials, 1)
	assert.Equal(t, "m-on", v.Parts[0].Materials[0].ID)
	assert.Equal(t, "s-on-first", v.Parts[0].Sizes[0].ID)
	require.Len(t, v.Services, 1)
	assert.Equal(t, "svc-on", v.Services[0].ID)

	// исходный каталог не меняется
	assert.Len(t, c.Parts[1].Materials, 2)
}

package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type editTarget struct {
	Kind   string `json:"kind"`
	PartID string `json:"part_id"`
}

func TestMemRepoPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewMemRepo()
	ctx := context.Background()

	it, err := r.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, it.State)

	p := Payload{}.With(KeyName, "Иван", KeyMsgID, 77, KeyEdit, editTarget{Kind: "size", PartID: "p1"})
	require.NoError(t, r.Set(ctx, 5, StateCheckoutPhone, p))

	it, err = r.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, StateCheckoutPhone, it.State)

	name, ok := GetString(it.Payload, KeyName)
	assert.True(t, ok)
	assert.Equal(t, "Иван", name)

	id, ok := GetInt(it.Payload, KeyMsgID)
	assert.True(t, ok)
	assert.Equal(t, 77, id)

	var e editTarget
	require.True(t, GetJSON(it.Payload, KeyEdit, &e))
	assert.Equal(t, editTarget{Kind: "size", PartID: "p1"}, e)

	assert.False(t, GetJSON(it.Payload, "missing", &e))

	require.NoError(t, r.Reset(ctx, 5))
	it, err = r.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, it.State)
}

func TestPayloadWithDoesNotMutate(t *testing.T) {
	t.Parallel()

	p := Payload{"a": "1"}
	q := p.With("b", "2")
	assert.Len(t, p, 1)
	assert.Len(t, q, 2)
}

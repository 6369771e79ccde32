package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() Cart {
	return Cart{
		{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "a.jpg", Amount: 2},
		{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: 139.9, Image: "b.jpg", Amount: 1},
		{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "c.jpg", Amount: 3},
	}
}

func TestCart_Find(t *testing.T) {
	c := sampleCart()

	p, ok := c.Find(2)
	require.True(t, ok)
	assert.Equal(t, 139.9, p.Price)

	_, ok = c.Find(42)
	assert.False(t, ok)
	assert.Equal(t, -1, c.Index(42))
}

func TestCart_Totals(t *testing.T) {
	c := sampleCart()
	assert.Equal(t, 6, c.ItemCount())
	assert.InDelta(t, 179.9*2+139.9+219.9*3, c.Subtotal(), 1e-9)

	var empty Cart
	assert.Equal(t, 0, empty.ItemCount())
	assert.Zero(t, empty.Subtotal())
}

func TestCart_WithAppended_SetsAmountOne(t *testing.T) {
	c := sampleCart()
	next := c.WithAppended(Product{ID: 4, Title: "Tênis", Price: 99.9, Amount: 7})

	require.Len(t, next, 4)
	assert.Equal(t, 4, next[3].ID)
	assert.Equal(t, 1, next[3].Amount)
	assert.Len(t, c, 3, "receiver must not change")
}

func TestCart_WithAmount_DoesNotAliasReceiver(t *testing.T) {
	c := sampleCart()
	next := c.WithAmount(1, 5)

	assert.Equal(t, 5, next[0].Amount)
	assert.Equal(t, 2, c[0].Amount)
}

func TestCart_Without_KeepsOrder(t *testing.T) {
	next := sampleCart().Without(2)

	require.Len(t, next, 2)
	assert.Equal(t, []int{1, 3}, []int{next[0].ID, next[1].ID})
}

func TestCart_CloneNilIsEmpty(t *testing.T) {
	var c Cart
	clone := c.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestCart_Validate(t *testing.T) {
	assert.NoError(t, sampleCart().Validate())
	assert.NoError(t, Cart{}.Validate())

	dup := Cart{{ID: 1, Amount: 1}, {ID: 1, Amount: 2}}
	assert.ErrorIs(t, dup.Validate(), ErrInvalidCart)

	zero := Cart{{ID: 1, Amount: 0}}
	assert.ErrorIs(t, zero.Validate(), ErrInvalidCart)
}

package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
)

func testCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	cat, err := NewCatalogue([]Material{
		{Code: "plaque", Title: core.Copy{En: "Plaque", Cy: "Plac"}, MaxQuantity: 1},
		{Code: "stickers", Title: core.Copy{En: "Stickers", Cy: "Sticeri"}, MaxQuantity: 3},
	})
	require.NoError(t, err)
	return cat
}

func TestBasketApply(t *testing.T) {
	cat := testCatalogue(t)

	tests := []struct {
		name    string
		basket  Basket
		action  Action
		code    string
		want    Basket
		wantErr error
	}{
		{name: "increment new", basket: Basket{}, action: ActionIncrement, code: "stickers", want: Basket{"stickers": 1}},
		{name: "increment existing", basket: Basket{"stickers": 2}, action: ActionIncrement, code: "stickers", want: Basket{"stickers": 3}},
		{name: "increment capped", basket: Basket{"plaque": 1}, action: ActionIncrement, code: "plaque", want: Basket{"plaque": 1}},
		{name: "decrement", basket: Basket{"stickers": 2}, action: ActionDecrement, code: "stickers", want: Basket{"stickers": 1}},
		{name: "decrement to zero", basket: Basket{"stickers": 1, "plaque": 1}, action: ActionDecrement, code: "stickers", want: Basket{"plaque": 1}},
		{name: "decrement absent", basket: Basket{}, action: ActionDecrement, code: "stickers", want: Basket{}},
		{name: "remove", basket: Basket{"stickers": 3, "plaque": 1}, action: ActionRemove, code: "stickers", want: Basket{"plaque": 1}},
		{name: "clear", basket: Basket{"stickers": 3, "plaque": 1}, action: ActionClear, want: Basket{}},
		{name: "unknown material", basket: Basket{}, action: ActionIncrement, code: "mugs", want: Basket{}, wantErr: ErrUnknownMaterial},
		{name: "unknown action", basket: Basket{"stickers": 1}, action: "double", code: "stickers", want: Basket{"stickers": 1}, wantErr: ErrUnknownAction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.basket.Apply(cat, tc.action, tc.code)
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.want, tc.basket)
		})
	}
}

func TestBasketLines(t *testing.T) {
	cat := testCatalogue(t)
	b := Basket{"stickers": 2, "plaque": 1, "retired": 4}

	assert.Equal(t, 7, b.Count())
	assert.False(t, b.IsEmpty())
	assert.True(t, Basket{}.IsEmpty())
	assert.Equal(t, []BasketLine{
		{Code: "plaque", Title: "Plac", Quantity: 1, MaxQuantity: 1},
		{Code: "stickers", Title: "Sticeri", Quantity: 2, MaxQuantity: 3},
	}, b.Lines(cat, core.LocaleCy))
}

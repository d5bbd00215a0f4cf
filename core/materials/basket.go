package materials

import (
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

type Action string

const (
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionRemove    Action = "remove"
	ActionClear     Action = "clear"
)

var ErrUnknownAction = errors.New("unknown basket action")

// Basket holds the quantity of each material a visitor wants, by material code.
// It lives in their session.
type Basket map[string]int

// Apply changes the basket. Quantities never go above the material's MaxQuantity
// and materials whose quantity drops to zero leave the basket.
func (b Basket) Apply(cat *Catalogue, action Action, code string) error {
	if action == ActionClear {
		for k := range b {
			delete(b, k)
		}
		return nil
	}

	m, ok := cat.Get(code)
	if !ok {
		return ErrUnknownMaterial
	}
	switch action {
	case ActionIncrement:
		if b[code] < m.MaxQuantity {
			b[code]++
		}
	case ActionDecrement:
		if b[code] > 1 {
			b[code]--
		} else {
			delete(b, code)
		}
	case ActionRemove:
		delete(b, code)
	default:
		return ErrUnknownAction
	}
	return nil
}

// Count is the number of items in the basket.
func (b Basket) Count() int {
	var n int
	for _, q := range b {
		n += q
	}
	return n
}

func (b Basket) IsEmpty() bool { return b.Count() == 0 }

// BasketLine is a material in the basket, for display.
type BasketLine struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Quantity    int    `json:"quantity"`
	MaxQuantity int    `json:"maxQuantity"`
}

// Lines lists the basket in catalogue order, skipping materials no longer in the catalogue.
func (b Basket) Lines(cat *Catalogue, l core.Locale) []BasketLine {
	lines := make([]BasketLine, 0, len(b))
	for _, m := range cat.items {
		if q := b[m.Code]; q > 0 {
			lines = append(lines, BasketLine{Code: m.Code, Title: m.Title.In(l), Quantity: q, MaxQuantity: m.MaxQuantity})
		}
	}
	return lines
}

package domain

import (
	"errors"
	"fmt"
)

// Product is a catalog product as held in the cart. Amount is the quantity
// selected by the shopper.
type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// StockEntry is the quantity of a product available in the stock service.
type StockEntry struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Cart is the ordered list of products in the cart, unique by ID, each with
// Amount >= 1. Transformations never modify the receiver; they return a new
// Cart so a published Cart can be shared without copying.
type Cart []Product

// ErrInvalidCart is returned by Validate.
var ErrInvalidCart = errors.New("invalid cart")

// Index returns the position of productID in the cart, or -1.
func (c Cart) Index(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Find returns the entry for productID.
func (c Cart) Find(productID int) (Product, bool) {
	if i := c.Index(productID); i >= 0 {
		return c[i], true
	}
	return Product{}, false
}

// Clone returns a copy that shares no backing array with c. A nil cart
// clones to an empty, non-nil one so it encodes as [].
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// ItemCount is the sum of all amounts.
func (c Cart) ItemCount() int {
	n := 0
	for _, p := range c {
		n += p.Amount
	}
	return n
}

// Subtotal is the sum of price * amount.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, p := range c {
		total += p.Price * float64(p.Amount)
	}
	return total
}

// WithAppended returns c plus p as a new entry with amount 1.
func (c Cart) WithAppended(p Product) Cart {
	p.Amount = 1
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, p)
}

// WithAmount returns c with productID's amount set to amount. The entry
// must exist.
func (c Cart) WithAmount(productID, amount int) Cart {
	out := c.Clone()
	if i := out.Index(productID); i >= 0 {
		out[i].Amount = amount
	}
	return out
}

// Without returns c minus productID, the others keeping their order.
func (c Cart) Without(productID int) Cart {
	out := make(Cart, 0, len(c))
	for _, p := range c {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that ids are unique and every amount is at least 1.
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for _, p := range c {
		if p.Amount < 1 {
			return fmt.Errorf("%w: product %d has amount %d", ErrInvalidCart, p.ID, p.Amount)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: product %d appears twice", ErrInvalidCart, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

package cart

import (
	"errors"
	"time"
)

// ErrInvalidQuantity is returned when an add is attempted with a
// non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type LineItem struct {
	ProductID  string  `json:"productId"`
	VariantKey string  `json:"variantKey"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}

// Cart holds the line items for one user. Items keep insertion order so the
// UI can render them in the order they were added. UnitPrice is the price
// seen when the item was first added; checkout re-resolves prices
// server-side and never settles on this value.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []LineItem{}, UpdatedAt: time.Now().UTC()}
}

// AddItem merges into an existing (productId, variantKey) line or appends a
// new one. The price snapshot is taken on first add only; later adds of the
// same variant keep the original snapshot. Stock is not checked here;
// checkout enforces it against the catalog.
func (c *Cart) AddItem(productID, variantKey string, unitPrice float64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantKey == variantKey {
			c.Items[i].Quantity += quantity
			c.touch()
			return nil
		}
	}

	c.Items = append(c.Items, LineItem{
		ProductID:  productID,
		VariantKey: variantKey,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	})
	c.touch()
	return nil
}

// UpdateQuantity sets the quantity of the matching line. A quantity of zero
// or less is ignored rather than treated as a removal; callers that want a
// line gone must use RemoveItem. A missing line is also ignored.
func (c *Cart) UpdateQuantity(productID, variantKey string, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantKey == variantKey {
			c.Items[i].Quantity = quantity
			c.touch()
			return
		}
	}
}

// RemoveItem deletes the matching line. Removing a line that does not exist
// is a no-op.
func (c *Cart) RemoveItem(productID, variantKey string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantKey == variantKey {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = c.Items[:0]
	c.touch()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal sums unitPrice × quantity over all lines. Display value only.
func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

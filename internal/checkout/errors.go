package checkout

import (
	"errors"
	"fmt"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	ReasonProductUnavailable = "product_unavailable"
	ReasonOutOfStock         = "out_of_stock"
)

// Error identifies exactly which cart line failed validation and why, so
// the UI can point the user at the offending item. No order is persisted
// when one of these is returned.
type Error struct {
	Reason     string `json:"reason"`
	ProductID  string `json:"productId"`
	VariantKey string `json:"variantKey"`
	Requested  int    `json:"requested,omitempty"`
	Available  int    `json:"available,omitempty"`
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonOutOfStock:
		return fmt.Sprintf("out of stock: %s/%s requested %d, available %d",
			e.ProductID, e.VariantKey, e.Requested, e.Available)
	default:
		return fmt.Sprintf("product unavailable: %s/%s", e.ProductID, e.VariantKey)
	}
}

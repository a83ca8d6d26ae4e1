package catalog

import "time"

// Variant is one purchasable configuration of a product. The key is the
// size label shown in the shop ("8mm", "small", ...). Price and stock on
// the variant row are the settlement source of truth at checkout.
type Variant struct {
	Key        string  `json:"key"`
	Price      float64 `json:"price"`
	StockCount int     `json:"stockCount"`
}

type Product struct {
	ID                string    `json:"productId"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Images            []string  `json:"images"`
	Category          string    `json:"category"`
	Material          string    `json:"material"`
	SpiritualBenefits string    `json:"spiritualBenefits,omitempty"`
	CareInstructions  string    `json:"careInstructions,omitempty"`
	Certification     string    `json:"certification"`
	Featured          bool      `json:"featured"`
	Rating            float64   `json:"rating"`
	NumReviews        int       `json:"numReviews"`
	Variants          []Variant `json:"variants"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

var Categories = []string{"rudraksha", "karungali", "spatika", "tulasi", "panchamuki"}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Filter narrows List results. Zero value lists everything.
type Filter struct {
	Category     string
	FeaturedOnly bool
}

package catalog

import "github.com/shopspring/decimal"

type ProductInput struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	ImageURL       *string          `json:"image_url"`
	Stock          *int             `json:"stock"`
	CategoryID     *string          `json:"category_id"`
	Specifications map[string]any   `json:"specifications"`
}

// ProductPatch is one row of a batch update.
type ProductPatch struct {
	ID string `json:"id"`
	ProductInput
}

type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

package domain

import "time"

// Product is a sellable item.
type Product struct {
	ID            string      `json:"_id"`
	Title         string      `json:"title"`
	Price         float64     `json:"price"`
	RetailerPrice float64     `json:"retailerPrice"`
	Stock         int         `json:"stock"`
	Category      CategoryRef `json:"category"`
	Description   string      `json:"description,omitempty"`
	AboutProduct  string      `json:"aboutProduct,omitempty"`
	IsFeatured    bool        `json:"isFeatured"`
	IsTrending    bool        `json:"isTrending"`
	Images        []string    `json:"images,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// EntityID implements resource.Entity.
func (p Product) EntityID() string { return p.ID }

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }

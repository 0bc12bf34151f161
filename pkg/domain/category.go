package domain

import (
	"encoding/json"
	"time"
)

// Category groups products in the storefront.
type Category struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	Image       string    `json:"image,omitempty"` // URL served by the API
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EntityID implements resource.Entity.
func (c Category) EntityID() string { return c.ID }

// CategoryRef is a product's category field. The API returns either the bare
// id or the populated category object depending on the endpoint.
type CategoryRef struct {
	ID    string `json:"_id"`
	Title string `json:"title,omitempty"`
}

// UnmarshalJSON accepts both "c1" and {"_id":"c1","title":"..."}.
func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Title = ""
		return nil
	}
	type plain CategoryRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CategoryRef(p)
	return nil
}

// MarshalJSON writes the bare id, which is what create/update endpoints expect.
func (r CategoryRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Label returns the category title, falling back to its id.
func (r CategoryRef) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

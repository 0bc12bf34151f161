package domain

import "time"

// User roles as stored by the API.
const (
	RoleAdmin       = "admin"
	RoleUser        = "user"
	RoleShopOwner   = "shopowner"
	RoleElectrician = "electrician"
)

// User is an account listed by GET /auth/users.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID implements resource.Entity.
func (u User) EntityID() string { return u.ID }

// Contact returns the email, then the phone, then "N/A".
func (u User) Contact() string {
	switch {
	case u.Email != "":
		return u.Email
	case u.Phone != "":
		return u.Phone
	default:
		return "N/A"
	}
}

// Profile is the logged-in actor returned by POST /auth/login and kept in
// the session store.
type Profile struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// DisplayName returns the profile name or a placeholder.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == "" {
		return "Admin"
	}
	return p.Name
}

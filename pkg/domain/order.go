package domain

import (
	"strings"
	"time"
)

// OrderStatus is the canonical lowercase order state.
type OrderStatus string

const (
	StatusPlaced     OrderStatus = "placed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in fulfilment order.
var OrderStatuses = []OrderStatus{
	StatusPlaced,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// TrackingSteps is the forward path shown in the order tracking strip.
var TrackingSteps = []OrderStatus{
	StatusPlaced,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
}

// transitions is the closed set of allowed status changes.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:     {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// ParseStatus normalizes a server status string. Older API builds used
// capitalized "Pending/Shipped/Delivered"; "pending" maps to placed.
func ParseStatus(s string) (OrderStatus, bool) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if v == "pending" {
		return StatusPlaced, true
	}
	if v == "canceled" {
		return StatusCancelled, true
	}
	return v, v.Valid()
}

// Valid reports whether s is a canonical status.
func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// NextStatuses returns the statuses reachable from s.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StepIndex returns the position of s in TrackingSteps, or -1.
func (s OrderStatus) StepIndex() int {
	for i, st := range TrackingSteps {
		if st == s {
			return i
		}
	}
	return -1
}

// Order is a customer order with its line items.
type Order struct {
	ID              string      `json:"_id"`
	User            OrderUser   `json:"user"`
	ShippingAddress Address     `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentStatus   string      `json:"paymentStatus"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// EntityID implements resource.Entity.
func (o Order) EntityID() string { return o.ID }

// CanonicalStatus returns the normalized status of o.
func (o Order) CanonicalStatus() OrderStatus {
	s, _ := ParseStatus(string(o.Status))
	return s
}

// OrderUser is the populated customer on an order.
type OrderUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Address is a shipping address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country,omitempty"`
}

// String joins the non-empty address parts.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderItem is one line of an order.
type OrderItem struct {
	Product  OrderProduct `json:"product"`
	Quantity int          `json:"quantity"`
	Price    float64      `json:"price"`
}

// OrderProduct is the populated product on an order line.
type OrderProduct struct {
	ID     string   `json:"_id"`
	Title  string   `json:"title"`
	Images []string `json:"images,omitempty"`
}

// Period is a client-side order date filter.
type Period string

const (
	PeriodAll   Period = "All"
	PeriodToday Period = "Today"
	PeriodWeek  Period = "This Week"
	PeriodMonth Period = "This Month"
)

// Periods is the cycle order for the orders filter.
var Periods = []Period{PeriodAll, PeriodToday, PeriodWeek, PeriodMonth}

// Contains reports whether t falls in the period relative to now.
// Weeks start on Sunday.
func (p Period) Contains(t, now time.Time) bool {
	t = t.In(now.Location())
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return !t.Before(day) && t.Before(day.AddDate(0, 0, 1))
	case PeriodWeek:
		start := day.AddDate(0, 0, -int(now.Weekday()))
		return !t.Before(start) && t.Before(start.AddDate(0, 0, 7))
	case PeriodMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	default:
		return true
	}
}

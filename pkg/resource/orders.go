package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// OrderController is the orders list plus status changes.
type OrderController struct {
	*Controller[domain.Order, NoDraft]
	gw Gateway
}

// NewOrders returns the orders controller. Period filtering uses the wall clock.
func NewOrders(gw Gateway, opts ...Option[domain.Order]) *OrderController {
	return NewOrdersAt(gw, time.Now, opts...)
}

// NewOrdersAt is NewOrders with an explicit clock.
func NewOrdersAt(gw Gateway, now func() time.Time, opts ...Option[domain.Order]) *OrderController {
	opts = append([]Option[domain.Order]{WithMatch(MatchOrder(now))}, opts...)
	return &OrderController{
		Controller: New[domain.Order, NoDraft](orderAPI{gw}, opts...),
		gw:         gw,
	}
}

// SetStatus moves order id to status. The change must be allowed by
// domain.CanTransition from the order's status in the snapshot; otherwise
// no request is sent and ErrInvalidTransition is returned.
func (c *OrderController) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	o, ok := c.Get(id)
	if !ok {
		return domain.Order{}, Classify("set status", fmt.Errorf("order %s: %w", id, ErrNotLoaded))
	}
	from := o.CanonicalStatus()
	to, valid := domain.ParseStatus(string(status))
	if !valid || !domain.CanTransition(from, to) {
		return domain.Order{}, &Error{
			Op:      "set status",
			Kind:    KindValidation,
			Message: fmt.Sprintf("Cannot change status from %s to %s.", from, status),
			Err:     ErrInvalidTransition,
		}
	}
	updated, err := c.mutate(ctx, "status", id, func(ctx context.Context) (domain.Order, error) {
		return deref(c.gw.UpdateOrderStatus(ctx, id, to))
	})
	if err != nil || updated.ID != "" {
		return updated, err
	}
	// The response carried no order; report it from the refreshed list.
	if fresh, ok := c.Get(id); ok {
		return fresh, nil
	}
	o.Status = to
	return o, nil
}

// Advance moves order id one step along the tracking path.
func (c *OrderController) Advance(ctx context.Context, id string) (domain.Order, error) {
	o, ok := c.Get(id)
	if !ok {
		return domain.Order{}, Classify("set status", fmt.Errorf("order %s: %w", id, ErrNotLoaded))
	}
	for _, next := range o.CanonicalStatus().NextStatuses() {
		if next != domain.StatusCancelled {
			return c.SetStatus(ctx, id, next)
		}
	}
	return domain.Order{}, &Error{
		Op:      "set status",
		Kind:    KindValidation,
		Message: fmt.Sprintf("Order is already %s.", o.CanonicalStatus()),
		Err:     ErrInvalidTransition,
	}
}

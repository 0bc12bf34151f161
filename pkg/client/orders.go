package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// ListOrders returns all orders, newest first as served by the API.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/orders", "orders", &orders); err != nil {
		return nil, fmt.Errorf("client.ListOrders: %w", err)
	}
	for i := range orders {
		orders[i].Status = orders[i].CanonicalStatus()
	}
	return orders, nil
}

// UpdateOrderStatus sets an order's status. Deployments that only route PUT
// answer PATCH with 405; the call is retried once with PUT in that case.
// Any 2xx is success; the updated order is nil when the body carries none.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	path := "/orders/" + url.PathEscape(id) + "/status"
	body := map[string]string{"status": string(status)}

	var updated domain.Order
	err := c.doRequest(ctx, http.MethodPatch, path, body, "order", &updated)
	if IsStatus(err, http.StatusMethodNotAllowed) {
		err = c.doRequest(ctx, http.MethodPut, path, body, "order", &updated)
	}
	if err != nil {
		return nil, fmt.Errorf("client.UpdateOrderStatus: %w", err)
	}
	if updated.ID == "" {
		// Some deployments answer {"message": ...} only.
		return nil, nil
	}
	updated.Status = updated.CanonicalStatus()
	return &updated, nil
}

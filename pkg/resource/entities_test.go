package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/session"
)

func TestCategoriesListFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"categories":[{"_id":"c1","title":"Electronics"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	store := session.NewStore(nil)
	store.SetToken("abc123")
	c := NewCategories(client.New(srv.URL, store))

	got, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Electronics", got[0].Title)
}

func TestSessionExpiryClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewStore(nil)
	store.SetToken("stale")
	var hooked atomic.Int32
	gw := client.New(srv.URL, store, client.WithSessionExpiredHandler(func() { hooked.Add(1) }))
	c := NewProducts(gw)

	_, err := c.List(context.Background(), Filter{})
	var re *Error
	require.ErrorAs(t, err, &re)
	require.Equal(t, KindSessionExpired, re.Kind)
	require.False(t, store.IsAuthenticated())
	require.Equal(t, int32(1), hooked.Load())
}

// orderGateway serves orders from memory. Other Gateway methods are not
// used by the orders controller and panic through the nil embed.
type orderGateway struct {
	Gateway
	orders  map[string]domain.Order
	updates atomic.Int32
	// bodyless mimics servers that acknowledge a status change without
	// returning the order.
	bodyless bool
}

func newOrderGateway(orders ...domain.Order) *orderGateway {
	g := &orderGateway{orders: map[string]domain.Order{}}
	for _, o := range orders {
		g.orders[o.ID] = o
	}
	return g
}

func (g *orderGateway) ListOrders(context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(g.orders))
	for _, id := range []string{"o1", "o2", "o3"} {
		if o, ok := g.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (g *orderGateway) UpdateOrderStatus(_ context.Context, id string, s domain.OrderStatus) (*domain.Order, error) {
	g.updates.Add(1)
	o, ok := g.orders[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: http.StatusNotFound, Message: "Order not found"}
	}
	o.Status = s
	g.orders[id] = o
	if g.bodyless {
		return nil, nil
	}
	return &o, nil
}

func TestSetStatusWithoutOrderInResponse(t *testing.T) {
	gw := newOrderGateway(domain.Order{ID: "o1", Status: domain.StatusProcessing})
	gw.bodyless = true
	c := NewOrders(gw)
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	o, err := c.SetStatus(context.Background(), "o1", domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, "o1", o.ID)
	require.Equal(t, domain.StatusShipped, o.Status)

	snap, ok := c.Get("o1")
	require.True(t, ok)
	require.Equal(t, domain.StatusShipped, snap.Status, "snapshot should be refreshed")
	require.Nil(t, c.LastError())

	o, err = c.Advance(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, o.Status)
	require.EqualValues(t, 2, gw.updates.Load())
}

func TestSetStatusTransitions(t *testing.T) {
	gw := newOrderGateway(domain.Order{ID: "o1", Status: domain.StatusProcessing})
	c := NewOrders(gw)
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	o, err := c.SetStatus(context.Background(), "o1", domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, o.Status)

	o, err = c.SetStatus(context.Background(), "o1", domain.StatusDelivered)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, o.Status)

	snap, ok := c.Get("o1")
	require.True(t, ok)
	require.Equal(t, domain.StatusDelivered, snap.Status)

	_, err = c.SetStatus(context.Background(), "o1", domain.StatusPlaced)
	require.ErrorIs(t, err, ErrInvalidTransition)
	var re *Error
	require.ErrorAs(t, err, &re)
	require.Equal(t, KindValidation, re.Kind)
	require.Equal(t, int32(2), gw.updates.Load(), "rejected transition must not send a request")
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	gw := newOrderGateway(domain.Order{ID: "o1", Status: domain.StatusPlaced})
	c := NewOrders(gw)
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	_, err = c.SetStatus(context.Background(), "o1", "returned")
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = c.SetStatus(context.Background(), "missing", domain.StatusProcessing)
	require.ErrorIs(t, err, ErrNotLoaded)
	require.Zero(t, gw.updates.Load())
}

func TestCancelFromAnyOpenState(t *testing.T) {
	gw := newOrderGateway(
		domain.Order{ID: "o1", Status: domain.StatusPlaced},
		domain.Order{ID: "o2", Status: domain.StatusShipped},
		domain.Order{ID: "o3", Status: domain.StatusCancelled},
	)
	c := NewOrders(gw)
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	_, err = c.SetStatus(context.Background(), "o1", domain.StatusCancelled)
	require.NoError(t, err)
	_, err = c.SetStatus(context.Background(), "o2", domain.StatusCancelled)
	require.NoError(t, err)
	_, err = c.SetStatus(context.Background(), "o3", domain.StatusProcessing)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvance(t *testing.T) {
	gw := newOrderGateway(domain.Order{ID: "o1", Status: "Pending"})
	c := NewOrders(gw)
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	for _, want := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
		o, err := c.Advance(context.Background(), "o1")
		require.NoError(t, err)
		require.Equal(t, want, o.Status)
	}
	_, err = c.Advance(context.Background(), "o1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrdersPeriodFilter(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) // Thursday
	gw := newOrderGateway(
		domain.Order{ID: "o1", CreatedAt: now.Add(-time.Hour)},
		domain.Order{ID: "o2", CreatedAt: now.AddDate(0, 0, -3)},
		domain.Order{ID: "o3", CreatedAt: now.AddDate(0, -1, 0)},
	)
	c := NewOrdersAt(gw, func() time.Time { return now })
	_, err := c.List(context.Background(), Filter{})
	require.NoError(t, err)

	cases := map[domain.Period][]string{
		domain.PeriodAll:   {"o1", "o2", "o3"},
		domain.PeriodToday: {"o1"},
		domain.PeriodWeek:  {"o1", "o2"},
		domain.PeriodMonth: {"o1", "o2"},
	}
	for p, want := range cases {
		c.SetFilter(Filter{Period: p})
		var got []string
		for _, o := range c.Visible() {
			got = append(got, o.ID)
		}
		require.Equal(t, want, got, "period %s", p)
	}
}

func TestUsersRoleSplit(t *testing.T) {
	users := []domain.User{
		{ID: "u1", Name: "Asha", Role: domain.RoleUser},
		{ID: "u2", Name: "Ravi", Role: domain.RoleElectrician},
		{ID: "u3", Name: "Kiran", Role: domain.RoleShopOwner},
		{ID: "u4", Name: "Root", Role: domain.RoleAdmin},
	}
	var customers, trade []string
	for _, u := range users {
		if MatchUser(u, Filter{Roles: CustomerRoles}) {
			customers = append(customers, u.ID)
		}
		if MatchUser(u, Filter{Roles: TradeRoles}) {
			trade = append(trade, u.ID)
		}
	}
	require.Equal(t, []string{"u1"}, customers)
	require.Equal(t, []string{"u2", "u3"}, trade)
	require.True(t, MatchUser(users[3], Filter{Search: "roo"}))
}

func TestReadOnlyMutationsUnsupported(t *testing.T) {
	c := NewUsers(nil)
	_, err := c.Create(context.Background(), NoDraft{})
	require.ErrorIs(t, err, errors.ErrUnsupported)
	var re *Error
	require.ErrorAs(t, err, &re)
	require.Equal(t, KindValidation, re.Kind)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"network", &client.NetworkError{Err: errors.New("dial")}, KindNetwork},
		{"expired", client.ErrSessionExpired, KindSessionExpired},
		{"wrapped expired", errors.Join(errors.New("x"), client.ErrSessionExpired), KindSessionExpired},
		{"bad request", &client.HTTPError{StatusCode: 400, Message: "Price must be positive"}, KindValidation},
		{"not found", &client.HTTPError{StatusCode: 404}, KindNotFound},
		{"conflict", &client.HTTPError{StatusCode: 409}, KindNotFound},
		{"server", &client.HTTPError{StatusCode: 502}, KindServer},
		{"canceled", context.Canceled, KindCanceled},
		{"deadline", context.DeadlineExceeded, KindCanceled},
		{"other", errors.New("decode response: bad"), KindServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify("op", tc.err)
			require.Equal(t, tc.want, got.Kind)
			require.NotEmpty(t, got.Message)
			require.ErrorIs(t, got, tc.err)
		})
	}
	require.Nil(t, Classify("op", nil))
}

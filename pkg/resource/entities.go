package resource

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Gateway is the subset of *client.Client the entity adapters call.
type Gateway interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, d client.CategoryDraft) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, d client.CategoryDraft) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, d client.ProductDraft) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, d client.ProductDraft) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
}

// NoDraft is the draft type of read-only lists.
type NoDraft struct{}

// --- Categories ---

type categoryAPI struct{ gw Gateway }

func (a categoryAPI) List(ctx context.Context, _ Filter) ([]domain.Category, error) {
	return a.gw.ListCategories(ctx)
}

func (a categoryAPI) Create(ctx context.Context, d client.CategoryDraft) (domain.Category, error) {
	return deref(a.gw.CreateCategory(ctx, d))
}

func (a categoryAPI) Update(ctx context.Context, id string, d client.CategoryDraft) (domain.Category, error) {
	return deref(a.gw.UpdateCategory(ctx, id, d))
}

func (a categoryAPI) Delete(ctx context.Context, id string) error {
	return a.gw.DeleteCategory(ctx, id)
}

// NewCategories returns the categories controller.
func NewCategories(gw Gateway, opts ...Option[domain.Category]) *Controller[domain.Category, client.CategoryDraft] {
	opts = append([]Option[domain.Category]{WithMatch(MatchCategory)}, opts...)
	return New[domain.Category, client.CategoryDraft](categoryAPI{gw}, opts...)
}

// MatchCategory matches Search against title and slug.
func MatchCategory(c domain.Category, f Filter) bool {
	return containsFold(f.Search, c.Title, c.Slug)
}

// --- Products ---

type productAPI struct{ gw Gateway }

func (a productAPI) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	return a.gw.ListProducts(ctx, f.Category)
}

func (a productAPI) Create(ctx context.Context, d client.ProductDraft) (domain.Product, error) {
	return deref(a.gw.CreateProduct(ctx, d))
}

func (a productAPI) Update(ctx context.Context, id string, d client.ProductDraft) (domain.Product, error) {
	return deref(a.gw.UpdateProduct(ctx, id, d))
}

func (a productAPI) Delete(ctx context.Context, id string) error {
	return a.gw.DeleteProduct(ctx, id)
}

// NewProducts returns the products controller.
func NewProducts(gw Gateway, opts ...Option[domain.Product]) *Controller[domain.Product, client.ProductDraft] {
	opts = append([]Option[domain.Product]{WithMatch(MatchProduct)}, opts...)
	return New[domain.Product, client.ProductDraft](productAPI{gw}, opts...)
}

// MatchProduct matches Search against title and category name.
func MatchProduct(p domain.Product, f Filter) bool {
	return containsFold(f.Search, p.Title, p.Category.Label())
}

// --- Users ---

type userAPI struct{ gw Gateway }

func (a userAPI) List(ctx context.Context, _ Filter) ([]domain.User, error) {
	return a.gw.ListUsers(ctx)
}

func (userAPI) Create(context.Context, NoDraft) (domain.User, error) {
	return domain.User{}, errors.ErrUnsupported
}

func (userAPI) Update(context.Context, string, NoDraft) (domain.User, error) {
	return domain.User{}, errors.ErrUnsupported
}

func (userAPI) Delete(context.Context, string) error { return errors.ErrUnsupported }

// NewUsers returns a read-only accounts controller. Set Filter.Roles to
// split customers from trade accounts.
func NewUsers(gw Gateway, opts ...Option[domain.User]) *Controller[domain.User, NoDraft] {
	opts = append([]Option[domain.User]{WithMatch(MatchUser)}, opts...)
	return New[domain.User, NoDraft](userAPI{gw}, opts...)
}

// CustomerRoles and TradeRoles are the role sets of the two accounts views.
var (
	CustomerRoles = []string{domain.RoleUser}
	TradeRoles    = []string{domain.RoleShopOwner, domain.RoleElectrician}
)

// MatchUser keeps users whose role is in Roles (any role when empty) and
// whose name or contact contains Search.
func MatchUser(u domain.User, f Filter) bool {
	if len(f.Roles) > 0 && !slices.Contains(f.Roles, u.Role) {
		return false
	}
	return containsFold(f.Search, u.Name, u.Email, u.Phone)
}

// --- Orders ---

type orderAPI struct{ gw Gateway }

func (a orderAPI) List(ctx context.Context, _ Filter) ([]domain.Order, error) {
	return a.gw.ListOrders(ctx)
}

func (orderAPI) Create(context.Context, NoDraft) (domain.Order, error) {
	return domain.Order{}, errors.ErrUnsupported
}

func (orderAPI) Update(context.Context, string, NoDraft) (domain.Order, error) {
	return domain.Order{}, errors.ErrUnsupported
}

func (orderAPI) Delete(context.Context, string) error { return errors.ErrUnsupported }

// MatchOrder returns an order matcher for Period relative to now() and
// Search against customer name, phone and order id.
func MatchOrder(now func() time.Time) func(domain.Order, Filter) bool {
	return func(o domain.Order, f Filter) bool {
		if f.Period != "" && !f.Period.Contains(o.CreatedAt, now()) {
			return false
		}
		return containsFold(f.Search, o.ID, o.User.Name, o.User.Phone)
	}
}

func deref[T any](v *T, err error) (T, error) {
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}

func containsFold(needle string, fields ...string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

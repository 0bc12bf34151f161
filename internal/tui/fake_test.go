package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/session"
)

const (
	testPhone    = "9876543210"
	testPassword = "secret"
)

// fakeBackend is an in-memory API used by the view tests.
type fakeBackend struct {
	mu         sync.Mutex
	store      *session.Store
	categories []domain.Category
	products   []domain.Product
	orders     []domain.Order
	users      []domain.User
	stats      *domain.DashboardStats

	listErr      error
	statsErr     error
	mutateErr    error
	loggedOut    bool
	created      []client.CategoryDraft
	productDraft []client.ProductDraft
	deleted      []string
	statusCalls  []domain.OrderStatus
	productQuery []string
}

func newFakeBackend(store *session.Store) *fakeBackend {
	return &fakeBackend{
		store: store,
		categories: []domain.Category{
			{ID: "c1", Title: "Electronics", Slug: "electronics"},
			{ID: "c2", Title: "Lighting", Slug: "lighting"},
		},
		products: []domain.Product{
			{ID: "p1", Title: "LED Bulb", Price: 120, Stock: 40, Category: domain.CategoryRef{ID: "c2", Title: "Lighting"}},
			{ID: "p2", Title: "Copper Wire", Price: 900, Stock: 0, Category: domain.CategoryRef{ID: "c1", Title: "Electronics"}},
		},
		orders: []domain.Order{
			{ID: "64f0000000000000000000a1", User: domain.OrderUser{Name: "Asha", Phone: "9000000001"}, Total: 240, Status: domain.StatusPlaced, CreatedAt: time.Now(),
				Items: []domain.OrderItem{{Product: domain.OrderProduct{Title: "LED Bulb"}, Quantity: 2, Price: 120}}},
			{ID: "64f0000000000000000000b2", User: domain.OrderUser{Name: "Ravi"}, Total: 900, Status: domain.StatusDelivered, CreatedAt: time.Now()},
		},
		users: []domain.User{
			{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: domain.RoleUser, IsActive: true},
			{ID: "u2", Name: "Kumar", Phone: "9000000002", Role: domain.RoleElectrician},
			{ID: "u3", Name: "Shop Co", Role: domain.RoleShopOwner, IsActive: true},
		},
		stats: &domain.DashboardStats{TotalOrders: 12, OrdersThisWeek: 3, OrdersThisMonth: 7, TotalProducts: 40, TotalCategories: 5, TotalUsers: 99},
	}
}

func (f *fakeBackend) BaseURL() string { return "http://api.test/api" }

func (f *fakeBackend) Logout() {
	f.mu.Lock()
	f.loggedOut = true
	f.mu.Unlock()
	f.store.Clear()
}

func (f *fakeBackend) Login(_ context.Context, phone, password string) (*domain.Profile, error) {
	if phone != testPhone || password != testPassword {
		return nil, fmt.Errorf("client.Login: %w", &client.HTTPError{StatusCode: 401, Message: "Invalid credentials"})
	}
	p := domain.Profile{ID: "a1", Phone: phone, Name: "Nisha", Role: domain.RoleAdmin}
	f.store.SetToken("tok")
	f.store.SetUser(p)
	return &p, nil
}

func (f *fakeBackend) DashboardStats(context.Context) (*domain.DashboardStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	s := *f.stats
	return &s, nil
}

func (f *fakeBackend) ListCategories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Category(nil), f.categories...), nil
}

func (f *fakeBackend) CreateCategory(_ context.Context, d client.CategoryDraft) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.created = append(f.created, d)
	c := domain.Category{ID: fmt.Sprintf("c%d", len(f.categories)+1), Title: d.Title, Description: d.Description, Slug: d.Slug}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeBackend) UpdateCategory(_ context.Context, id string, d client.CategoryDraft) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Title = d.Title
			f.categories[i].Description = d.Description
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("client.UpdateCategory: %w", &client.HTTPError{StatusCode: 404, Message: "Category not found"})
}

func (f *fakeBackend) DeleteCategory(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deleted = append(f.deleted, id)
	out := f.categories[:0]
	for _, c := range f.categories {
		if c.ID != id {
			out = append(out, c)
		}
	}
	f.categories = out
	return nil
}

func (f *fakeBackend) ListProducts(_ context.Context, category string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productQuery = append(f.productQuery, category)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Product
	for _, p := range f.products {
		if category == "" || p.Category.ID == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, d client.ProductDraft) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.productDraft = append(f.productDraft, d)
	p := domain.Product{ID: fmt.Sprintf("p%d", len(f.products)+1), Title: d.Title, Price: d.Price, Stock: d.Stock, Category: domain.CategoryRef{ID: d.Category}}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id string, d client.ProductDraft) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productDraft = append(f.productDraft, d)
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Title = d.Title
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("client.UpdateProduct: %w", &client.HTTPError{StatusCode: 404, Message: "Product not found"})
}

func (f *fakeBackend) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ListOrders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeBackend) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, status)
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, fmt.Errorf("client.UpdateOrderStatus: %w", &client.HTTPError{StatusCode: 404, Message: "Order not found"})
}

func (f *fakeBackend) ListUsers(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.User(nil), f.users...), nil
}

// collect runs cmd and flattens batches into their messages. Tick commands
// must not be passed in.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loggedInStore returns a session store holding an admin session.
func loggedInStore() *session.Store {
	s := session.NewStore(nil)
	s.SetToken("tok")
	s.SetUser(domain.Profile{ID: "a1", Name: "Nisha", Role: domain.RoleAdmin})
	return s
}

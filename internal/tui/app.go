package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/naveenspark/nksadmin/internal/browser"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

// Backend is the API surface the TUI drives. *client.Client implements it.
type Backend interface {
	resource.Gateway
	StatsSource
	Authenticator
	Logout()
	BaseURL() string
}

// Session is the read side of the session store.
type Session interface {
	IsAuthenticated() bool
	User() (*domain.Profile, bool)
}

// Deps wires the App to the API client and session store.
type Deps struct {
	Backend  Backend
	Session  Session
	Log      zerolog.Logger
	PageSize int
}

const (
	noticeExpired   = "Session expired, please log in again."
	noticeLoggedOut = "Logged out."
)

// App is the root Bubbletea model.
type App struct {
	deps      Deps
	guard     route.Guard
	route     route.Route
	requested route.Route // where to go after login

	categoriesCtrl   *categoryController
	productsCtrl     *productController
	ordersCtrl       *resource.OrderController
	usersCtrl        *userController
	electriciansCtrl *userController

	login        loginModel
	dashboard    dashboardModel
	categories   categoriesModel
	products     productsModel
	orders       ordersModel
	users        accountsModel
	electricians accountsModel

	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI and resolves start through the route guard.
func NewApp(deps Deps, start route.Route) App {
	a := App{deps: deps, guard: route.NewGuard(deps.Session)}
	a.build()
	a.resolve(start, "")
	return a
}

// build creates fresh controllers and views. Called at startup and
// whenever the session ends so no data outlives it.
func (a *App) build() {
	size, log := a.deps.PageSize, a.deps.Log

	a.categoriesCtrl = resource.NewCategories(a.deps.Backend,
		resource.WithLogger[domain.Category](log), resource.WithPageSize[domain.Category](size))
	a.productsCtrl = resource.NewProducts(a.deps.Backend,
		resource.WithLogger[domain.Product](log), resource.WithPageSize[domain.Product](size))
	a.ordersCtrl = resource.NewOrders(a.deps.Backend,
		resource.WithLogger[domain.Order](log), resource.WithPageSize[domain.Order](size))
	a.usersCtrl = resource.NewUsers(a.deps.Backend,
		resource.WithLogger[domain.User](log), resource.WithPageSize[domain.User](size))
	a.electriciansCtrl = resource.NewUsers(a.deps.Backend,
		resource.WithLogger[domain.User](log), resource.WithPageSize[domain.User](size))

	a.dashboard = newDashboardModel(a.deps.Backend, a.displayName())
	a.categories = newCategoriesModel(a.categoriesCtrl)
	a.products = newProductsModel(a.productsCtrl, a.categoriesCtrl)
	a.categories.assetBase = a.deps.Backend.BaseURL()
	a.products.assetBase = a.deps.Backend.BaseURL()
	a.orders = newOrdersModel(a.ordersCtrl)
	a.users = newAccountsModel(route.Users, a.usersCtrl, resource.CustomerRoles, "users")
	a.electricians = newAccountsModel(route.Electricians, a.electriciansCtrl, resource.TradeRoles, "electricians")

	if a.width > 0 {
		a.resize()
	}
}

func (a *App) cancelAll() {
	a.categoriesCtrl.Cancel()
	a.productsCtrl.Cancel()
	a.ordersCtrl.Cancel()
	a.usersCtrl.Cancel()
	a.electriciansCtrl.Cancel()
}

// cancelRoute aborts the in-flight requests owned by the view at r.
func (a *App) cancelRoute(r route.Route) {
	switch r {
	case route.Categories:
		a.categoriesCtrl.Cancel()
	case route.Products:
		a.productsCtrl.Cancel()
	case route.Orders:
		a.ordersCtrl.Cancel()
	case route.Users:
		a.usersCtrl.Cancel()
	case route.Electricians:
		a.electriciansCtrl.Cancel()
	}
}

func (a App) displayName() string {
	if a.deps.Session == nil {
		return (*domain.Profile)(nil).DisplayName()
	}
	p, _ := a.deps.Session.User()
	return p.DisplayName()
}

// resolve runs the guard and switches the active view without starting
// any loads. A redirect to login remembers the requested route.
func (a *App) resolve(target route.Route, notice string) {
	d := a.guard.Resolve(target)
	if d.Target == route.Login && a.deps.Session != nil && a.deps.Session.IsAuthenticated() {
		d.Target = route.Dashboard
	}
	if d.Target != a.route {
		a.cancelRoute(a.route)
	}
	a.deps.Log.Debug().Str("requested", string(d.Requested)).Str("target", string(d.Target)).Stringer("state", d.State).Msg("navigate")

	if d.Target == route.Login {
		if d.State == route.Redirected {
			a.requested = d.Requested
		}
		a.login = newLoginModel(a.deps.Backend, notice)
		if a.width > 0 {
			a.login, _ = a.login.Update(a.bodySize())
		}
	}
	a.route = d.Target
}

// navigate resolves target and starts the landing view's loads.
func (a App) navigate(target route.Route) (App, tea.Cmd) {
	if target == a.route {
		return a, nil
	}
	a.resolve(target, "")
	return a, a.initView()
}

func (a App) initView() tea.Cmd {
	switch a.route {
	case route.Dashboard:
		return a.dashboard.Init()
	case route.Categories:
		return a.categories.Init()
	case route.Products:
		return a.products.Init()
	case route.Orders:
		return a.orders.Init()
	case route.Users:
		return a.users.Init()
	case route.Electricians:
		return a.electricians.Init()
	}
	return nil
}

// endSession drops all session data and shows the login view.
func (a App) endSession(notice string) App {
	if a.route != route.Login && a.route != "" {
		a.requested = a.route
	}
	a.cancelAll()
	a.build()
	a.route = ""
	a.resolve(route.Login, notice)
	return a
}

// Route returns the active route.
func (a App) Route() route.Route { return a.route }

func (a App) Init() tea.Cmd {
	return tea.Batch(a.initView(), shimmerTickCmd())
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + help(1) = 4 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 4}
}

func (a *App) resize() {
	body := a.bodySize()
	a.login, _ = a.login.Update(body)
	a.dashboard, _ = a.dashboard.Update(body)
	a.categories, _ = a.categories.Update(body)
	a.products, _ = a.products.Update(body)
	a.orders, _ = a.orders.Update(body)
	a.users, _ = a.users.Update(body)
	a.electricians, _ = a.electricians.Update(body)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case shimmerTickMsg:
		a.frame++
		var cmd tea.Cmd
		switch a.route {
		case route.Orders:
			a.orders, cmd = a.orders.Update(msg)
		case route.Categories:
			a.categories, cmd = a.categories.Update(msg)
		case route.Products:
			a.products, cmd = a.products.Update(msg)
		}
		return a, tea.Batch(cmd, shimmerTickCmd())

	case sessionExpiredMsg:
		if a.route == route.Login {
			return a, nil
		}
		a.deps.Log.Info().Str("route", string(a.route)).Msg("session expired")
		return a.endSession(noticeExpired), nil

	case loggedInMsg:
		if a.route != route.Login {
			return a, nil
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		a.dashboard = newDashboardModel(a.deps.Backend, a.displayName())
		target := a.requested
		a.requested = ""
		if target == "" || target == route.Root || target == route.Login {
			target = route.Dashboard
		}
		a.resolve(target, "")
		return a, a.initView()

	case statsLoadedMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case listLoadedMsg:
		return a.routeMsg(msg.route, msg)
	case mutatedMsg:
		return a.routeMsg(msg.route, msg)
	case copiedMsg:
		return a.routeMsg(msg.route, msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			items := helpItems(a.apiURL())
			switch msg.String() {
			case "h", "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(items)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				if item := items[a.helpCursor]; item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch key := msg.String(); key {
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "L":
				a.deps.Backend.Logout()
				a = a.endSession(noticeLoggedOut)
				a.requested = ""
				return a, nil
			case "1", "2", "3", "4", "5", "6":
				i := int(key[0] - '1')
				return a.navigate(route.Protected[i])
			}
		}
	}

	return a.routeMsg(a.route, msg)
}

// routeMsg delivers msg to the view at r.
func (a App) routeMsg(r route.Route, msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch r {
	case route.Login:
		a.login, cmd = a.login.Update(msg)
	case route.Dashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case route.Categories:
		a.categories, cmd = a.categories.Update(msg)
	case route.Products:
		a.products, cmd = a.products.Update(msg)
	case route.Orders:
		a.orders, cmd = a.orders.Update(msg)
	case route.Users:
		a.users, cmd = a.users.Update(msg)
	case route.Electricians:
		a.electricians, cmd = a.electricians.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.route {
	case route.Login:
		return a.login.editing()
	case route.Categories:
		return a.categories.editing()
	case route.Products:
		return a.products.editing()
	case route.Orders:
		return a.orders.editing()
	case route.Users:
		return a.users.editing()
	case route.Electricians:
		return a.electricians.editing()
	}
	return false
}

func (a App) apiURL() string {
	if a.deps.Backend == nil {
		return ""
	}
	return a.deps.Backend.BaseURL()
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)

	// Identity line below logo
	if a.route != route.Login && a.deps.Session != nil {
		p, _ := a.deps.Session.User()
		line := dimStyle.Render(p.DisplayName())
		if p != nil {
			line += " " + RoleBadge(p.Role)
		}
		header += "\n" + centered(line, a.width)
	} else {
		header += "\n"
	}

	// Tab bar: one equal-width column per protected route
	var tabBar strings.Builder
	if a.route != route.Login {
		colWidth := a.width / len(route.Protected)
		for i, r := range route.Protected {
			var label string
			if r == a.route {
				label = accentStyle.Render(fmt.Sprint(i+1)) + " " + selectedStyle.Underline(true).Render(r.Title())
			} else {
				label = metaStyle.Render(fmt.Sprint(i+1)) + " " + dimStyle.Render(r.Title())
			}
			labelWidth := lipgloss.Width(label)
			leftPad := max(0, (colWidth-labelWidth)/2)
			rightPad := max(0, colWidth-labelWidth-leftPad)
			tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
		}
	}

	var body, help string
	global := helpEntry("1-6", "tabs") + "  " + helpEntry("h", "help") + "  " + helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
	switch a.route {
	case route.Login:
		body = a.login.View()
		help = " " + a.login.helpKeys()
	case route.Dashboard:
		body = a.dashboard.View()
		help = " " + a.dashboard.helpKeys() + "  " + global
	case route.Categories:
		body = a.categories.View()
		help = " " + a.categories.helpKeys()
	case route.Products:
		body = a.products.View()
		help = " " + a.products.helpKeys()
	case route.Orders:
		body = a.orders.View()
		help = " " + a.orders.helpKeys()
	case route.Users:
		body = a.users.View()
		help = " " + a.users.helpKeys() + "  " + global
	case route.Electricians:
		body = a.electricians.View()
		help = " " + a.electricians.helpKeys() + "  " + global
	}

	// Help overlay
	if a.helpOpen {
		body = helpView(helpItems(a.apiURL()), a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Chrome budget: header(2) + tabs(1) + help(1) = 4 lines + body
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

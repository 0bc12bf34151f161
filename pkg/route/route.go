// Package route decides which view a navigation attempt lands on.
package route

// Route is a navigation target, named by its path in the web dashboard.
type Route string

const (
	Root         Route = "/"
	Login        Route = "/login"
	Dashboard    Route = "/dashboard"
	Categories   Route = "/categories"
	Products     Route = "/products"
	Orders       Route = "/orders"
	Users        Route = "/users"
	Electricians Route = "/electricians"
)

// Protected lists the routes that require a session, in sidebar order.
var Protected = []Route{Dashboard, Categories, Products, Orders, Users, Electricians}

// IsProtected reports whether r requires a session.
func (r Route) IsProtected() bool {
	for _, p := range Protected {
		if p == r {
			return true
		}
	}
	return false
}

// Title is the human label used in tabs and headers.
func (r Route) Title() string {
	switch r {
	case Login:
		return "Login"
	case Dashboard:
		return "Dashboard"
	case Categories:
		return "Categories"
	case Products:
		return "Products"
	case Orders:
		return "Orders"
	case Users:
		return "Users"
	case Electricians:
		return "Electricians"
	}
	return string(r)
}

// State is the outcome of a guard evaluation.
type State int

const (
	Admitted State = iota
	Redirected
)

func (s State) String() string {
	if s == Redirected {
		return "redirected"
	}
	return "admitted"
}

// Decision is where a navigation attempt resolves to.
type Decision struct {
	State     State
	Requested Route
	Target    Route
}

// Authenticator is the part of the session store the guard consults.
type Authenticator interface {
	IsAuthenticated() bool
}

// Guard admits or redirects navigation into protected views. It makes no
// network calls; a stale token is caught later by the client's 401 handling.
type Guard struct {
	auth Authenticator
}

// NewGuard returns a guard backed by auth.
func NewGuard(auth Authenticator) Guard {
	return Guard{auth: auth}
}

// Resolve evaluates one navigation attempt. The root path resolves to the
// dashboard first. Unprotected routes are always admitted.
func (g Guard) Resolve(target Route) Decision {
	requested := target
	if target == Root || target == "" {
		target = Dashboard
	}
	if target.IsProtected() && (g.auth == nil || !g.auth.IsAuthenticated()) {
		return Decision{State: Redirected, Requested: requested, Target: Login}
	}
	return Decision{State: Admitted, Requested: requested, Target: target}
}

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

type userController = resource.Controller[domain.User, resource.NoDraft]

// accountsModel lists one role group of accounts. The users and
// electricians views are two instances with different roles.
type accountsModel struct {
	route  route.Route
	ctrl   *userController
	roles  []string
	noun   string
	list   listState
	frame  int
	width  int
	height int
}

func newAccountsModel(r route.Route, ctrl *userController, roles []string, noun string) accountsModel {
	m := accountsModel{route: r, ctrl: ctrl, roles: roles, noun: noun}
	if ctrl != nil {
		ctrl.SetFilter(m.filter())
	}
	return m
}

func (m accountsModel) Init() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	return refreshCmd(m.route, m.ctrl)
}

func (m accountsModel) editing() bool { return m.list.searching }

func (m accountsModel) filter() resource.Filter {
	return resource.Filter{Roles: m.roles, Search: m.list.search}
}

func (m accountsModel) selected() (domain.User, bool) {
	if m.ctrl == nil {
		return domain.User{}, false
	}
	page := m.ctrl.Page()
	if m.list.cursor < 0 || m.list.cursor >= len(page) {
		return domain.User{}, false
	}
	return page[m.list.cursor], true
}

func (m accountsModel) Update(msg tea.Msg) (accountsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case shimmerTickMsg:
		m.frame++

	case listLoadedMsg:
		if msg.err != nil {
			return m, m.list.fail(msg.err)
		}
		m.list.loaded = true
		m.list.clamp(len(m.ctrl.Page()))

	case copiedMsg:
		if msg.err != nil {
			m.list.setNotice("copy failed: "+msg.err.Error(), true)
		} else {
			m.list.setNotice("copied "+msg.what, false)
		}

	case tea.KeyMsg:
		if m.ctrl == nil {
			return m, nil
		}
		if m.list.searching {
			if changed, _ := m.list.searchKey(msg); changed {
				m.ctrl.SetFilter(m.filter())
				m.list.cursor = 0
			}
			return m, nil
		}
		if m.list.navKey(msg.String(), len(m.ctrl.Page()), m.ctrl) {
			return m, nil
		}
		switch msg.String() {
		case "/":
			m.list.searching = true
		case "r":
			m.list.setNotice("", false)
			return m, refreshCmd(m.route, m.ctrl)
		case "c":
			if u, ok := m.selected(); ok {
				return m, copyCmd(m.route, "contact", u.Contact())
			}
		}
	}
	return m, nil
}

func (m accountsModel) View() string {
	if m.ctrl == nil {
		return ""
	}
	var b strings.Builder
	if m.list.searching || m.list.search != "" {
		b.WriteString(renderSearch(m.list.search, m.list.searching, m.frame) + "\n")
	}

	page := m.ctrl.Page()
	rows := make([]string, len(page))
	for i, u := range page {
		active := successStyle.Render("Active")
		if !u.IsActive {
			active = errorStyle.Render("Inactive")
		}
		rows[i] = fmt.Sprintf("%s  %s  %s  %s  %s",
			padRight(u.Name, 22),
			padRight(u.Contact(), 28),
			RoleStyle(u.Role).Render(padRight(u.Role, 12)),
			dimStyle.Render(padRight(formatDate(u.CreatedAt), 12)),
			active)
	}
	header := fmt.Sprintf("%s  %s  %s  %s  %s", padRight("NAME", 22), padRight("CONTACT", 28), padRight("ROLE", 12), padRight("JOINED", 12), "STATUS")
	m.list.renderRows(&b, header, rows, m.ctrl, m.ctrl.Loading(), "no "+m.noun+" found")
	return b.String()
}

func (m accountsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("[/]", "page") + "  " + helpEntry("/", "search") + "  " + helpEntry("c", "copy contact") + "  " + helpEntry("r", "refresh")
}

package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/client"
)

func loadDashboard(m dashboardModel) (dashboardModel, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, msg := range collect(m.Init()) {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, cmds
}

func TestDashboardTiles(t *testing.T) {
	fb := newFakeBackend(loggedInStore())
	m, _ := loadDashboard(newDashboardModel(fb, "Nisha"))
	view := m.View()
	for _, want := range []string{"Welcome back", "Nisha", "Total orders", "12", "Orders this week", "Orders this month", "Products", "40", "Categories", "Users", "99"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboardErrorShowsDashes(t *testing.T) {
	fb := newFakeBackend(loggedInStore())
	fb.statsErr = fmt.Errorf("client.DashboardStats: %w", &client.HTTPError{StatusCode: 500, Message: "boom"})
	m, cmds := loadDashboard(newDashboardModel(fb, "Nisha"))
	if len(cmds) != 0 {
		t.Error("a server error must not route to login")
	}
	view := m.View()
	if strings.Count(view, "—") != len(dashboardTiles) {
		t.Errorf("want a dash per tile:\n%s", view)
	}
	if !strings.Contains(view, "Press r to retry") {
		t.Error("retry hint missing")
	}
}

func TestDashboardExpiredSessionRoutesToLogin(t *testing.T) {
	fb := newFakeBackend(loggedInStore())
	fb.statsErr = fmt.Errorf("client.DashboardStats: %w", client.ErrSessionExpired)
	_, cmds := loadDashboard(newDashboardModel(fb, "Nisha"))
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want the expiry command", len(cmds))
	}
}

func TestDashboardRefreshKey(t *testing.T) {
	fb := newFakeBackend(loggedInStore())
	fb.statsErr = errors.New("offline")
	m, _ := loadDashboard(newDashboardModel(fb, "Nisha"))

	fb.statsErr = nil
	m, cmd := m.Update(keyRunes("r"))
	if !m.loading || cmd == nil {
		t.Fatal("r should start a reload")
	}
	for _, msg := range collect(cmd) {
		m, _ = m.Update(msg)
	}
	if m.loading || m.err != nil || m.stats == nil {
		t.Errorf("after reload loading=%v err=%v stats=%v", m.loading, m.err, m.stats)
	}
}

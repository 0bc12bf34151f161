package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// StatsSource loads the dashboard counts.
type StatsSource interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

type statsLoadedMsg struct {
	stats *domain.DashboardStats
	err   error
}

type dashboardModel struct {
	src     StatsSource
	stats   *domain.DashboardStats
	loading bool
	err     error
	name    string
	frame   int
	width   int
	height  int
}

func newDashboardModel(src StatsSource, name string) dashboardModel {
	return dashboardModel{src: src, name: name}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load()
}

func (m dashboardModel) load() tea.Cmd {
	if m.src == nil {
		return nil
	}
	src := m.src
	return func() tea.Msg {
		s, err := src.DashboardStats(context.Background())
		return statsLoadedMsg{stats: s, err: err}
	}
}

func (m dashboardModel) editing() bool { return false }

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case shimmerTickMsg:
		m.frame++

	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.stats = nil
			if isExpired(msg.err) {
				return m, expiredCmd
			}
			return m, nil
		}
		m.stats = msg.stats

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

type tile struct {
	label string
	value func(*domain.DashboardStats) int
}

var dashboardTiles = []tile{
	{"Total orders", func(s *domain.DashboardStats) int { return s.TotalOrders }},
	{"Orders this week", func(s *domain.DashboardStats) int { return s.OrdersThisWeek }},
	{"Orders this month", func(s *domain.DashboardStats) int { return s.OrdersThisMonth }},
	{"Products", func(s *domain.DashboardStats) int { return s.TotalProducts }},
	{"Categories", func(s *domain.DashboardStats) int { return s.TotalCategories }},
	{"Users", func(s *domain.DashboardStats) int { return s.TotalUsers }},
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(" " + normalStyle.Render("Welcome back, ") + accentStyle.Render(m.name) + "\n\n")

	rendered := make([]string, len(dashboardTiles))
	for i, t := range dashboardTiles {
		value := "—"
		switch {
		case m.stats != nil:
			value = fmt.Sprintf("%d", t.value(m.stats))
		case m.err == nil:
			value = "..."
		}
		rendered[i] = tileStyle.Render(dimStyle.Render(t.label) + "\n" + tileValueStyle.Render(value))
	}
	perRow := 3
	if m.width > 0 && m.width < 3*(lipgloss.Width(rendered[0])+1) {
		perRow = max(1, m.width/(lipgloss.Width(rendered[0])+1))
	}
	for i := 0; i < len(rendered); i += perRow {
		row := rendered[i:min(i+perRow, len(rendered))]
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
	}

	switch {
	case m.loading:
		b.WriteString("\n " + dimStyle.Render("refreshing...") + "\n")
	case m.err != nil:
		b.WriteString("\n " + errorStyle.Render("Could not load stats. Press r to retry.") + "\n")
	}
	return b.String()
}

func (m dashboardModel) helpKeys() string {
	return helpEntry("r", "refresh") + "  " + helpEntry("2-6", "sections")
}

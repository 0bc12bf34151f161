package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

type ordersModel struct {
	ctrl          *resource.OrderController
	list          listState
	period        int // index into domain.Periods
	detailID      string
	confirmCancel bool
	busy          bool
	frame         int
	width         int
	height        int
}

func newOrdersModel(ctrl *resource.OrderController) ordersModel {
	return ordersModel{ctrl: ctrl}
}

func (m ordersModel) Init() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	return refreshCmd(route.Orders, m.ctrl.Controller)
}

func (m ordersModel) editing() bool {
	return m.list.searching || m.confirmCancel
}

func (m ordersModel) selected() (domain.Order, bool) {
	if m.ctrl == nil {
		return domain.Order{}, false
	}
	if m.detailID != "" {
		return m.ctrl.Get(m.detailID)
	}
	page := m.ctrl.Page()
	if m.list.cursor < 0 || m.list.cursor >= len(page) {
		return domain.Order{}, false
	}
	return page[m.list.cursor], true
}

func (m ordersModel) filter() resource.Filter {
	return resource.Filter{Period: domain.Periods[m.period], Search: m.list.search}
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
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
		if m.detailID != "" {
			if _, ok := m.ctrl.Get(m.detailID); !ok {
				m.detailID = ""
			}
		}

	case mutatedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.list.fail(msg.err)
		}
		m.list.setNotice(msg.done, false)
		m.list.clamp(len(m.ctrl.Page()))

	case copiedMsg:
		if msg.err != nil {
			m.list.setNotice("copy failed: "+msg.err.Error(), true)
		} else {
			m.list.setNotice("copied "+msg.what, false)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ordersModel) handleKey(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	if m.ctrl == nil {
		return m, nil
	}

	if m.confirmCancel {
		m.confirmCancel = false
		switch msg.String() {
		case "y", "Y":
			if o, ok := m.selected(); ok {
				return m.setStatus(o.ID, domain.StatusCancelled)
			}
		}
		return m, nil
	}

	if m.list.searching {
		if changed, _ := m.list.searchKey(msg); changed {
			m.ctrl.SetFilter(m.filter())
			m.list.cursor = 0
		}
		return m, nil
	}

	if m.detailID != "" {
		switch msg.String() {
		case "esc", "backspace", "enter":
			m.detailID = ""
			return m, nil
		}
	} else if m.list.navKey(msg.String(), len(m.ctrl.Page()), m.ctrl) {
		return m, nil
	}

	switch msg.String() {
	case "/":
		if m.detailID == "" {
			m.list.searching = true
		}
	case "r":
		m.list.setNotice("", false)
		return m, refreshCmd(route.Orders, m.ctrl.Controller)
	case "t":
		m.period = (m.period + 1) % len(domain.Periods)
		m.ctrl.SetFilter(m.filter())
		m.list.cursor = 0
	case "enter":
		if o, ok := m.selected(); ok {
			m.detailID = o.ID
			m.frame = 0
		}
	case "s":
		if o, ok := m.selected(); ok && !m.busy {
			m.busy = true
			m.list.setNotice("updating...", false)
			ctrl := m.ctrl
			return m, func() tea.Msg {
				updated, err := ctrl.Advance(context.Background(), o.ID)
				return mutatedMsg{route: route.Orders, done: fmt.Sprintf("order %s is now %s", shortID(o.ID), updated.CanonicalStatus()), err: err}
			}
		}
	case "x":
		if o, ok := m.selected(); ok {
			if o.CanonicalStatus().Terminal() {
				m.list.setNotice(fmt.Sprintf("Order is already %s.", o.CanonicalStatus()), true)
				return m, nil
			}
			m.confirmCancel = true
		}
	case "c":
		if o, ok := m.selected(); ok {
			return m, copyCmd(route.Orders, "order summary", orderSummary(o))
		}
	}
	return m, nil
}

func (m ordersModel) setStatus(id string, status domain.OrderStatus) (ordersModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.list.setNotice("updating...", false)
	ctrl := m.ctrl
	return m, func() tea.Msg {
		_, err := ctrl.SetStatus(context.Background(), id, status)
		return mutatedMsg{route: route.Orders, done: fmt.Sprintf("order %s is now %s", shortID(id), status), err: err}
	}
}

// orderSummary is the plain-text order shared with couriers and customers.
func orderSummary(o domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%s (%s)\n", shortID(o.ID), o.CanonicalStatus())
	fmt.Fprintf(&b, "%s %s\n", o.User.Name, o.User.Phone)
	if addr := o.ShippingAddress.String(); addr != "" {
		b.WriteString(addr + "\n")
	}
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d %s\n", it.Product.Title, it.Quantity, formatRupees(it.Price*float64(it.Quantity)))
	}
	fmt.Fprintf(&b, "Total: %s", formatRupees(o.Total))
	return b.String()
}

// trackingStrip renders the placed → delivered progress of an order.
func trackingStrip(s domain.OrderStatus) string {
	if s == domain.StatusCancelled {
		return StatusStyle(s).Render("✕ cancelled")
	}
	at := s.StepIndex()
	parts := make([]string, len(domain.TrackingSteps))
	for i, step := range domain.TrackingSteps {
		switch {
		case i < at:
			parts[i] = successStyle.Render("● " + string(step))
		case i == at:
			parts[i] = StatusStyle(step).Render("◉ " + string(step))
		default:
			parts[i] = metaStyle.Render("○ " + string(step))
		}
	}
	return strings.Join(parts, metaStyle.Render(" ── "))
}

func (m ordersModel) View() string {
	if m.ctrl == nil {
		return ""
	}
	if m.detailID != "" {
		if o, ok := m.ctrl.Get(m.detailID); ok {
			return m.detailView(o)
		}
	}

	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("period ") + accentStyle.Render(string(domain.Periods[m.period])) + "\n")
	if m.list.searching || m.list.search != "" {
		b.WriteString(renderSearch(m.list.search, m.list.searching, m.frame) + "\n")
	}

	page := m.ctrl.Page()
	rows := make([]string, len(page))
	for i, o := range page {
		status := o.CanonicalStatus()
		rows[i] = fmt.Sprintf("%s  %s  %s  %s  %s  %s",
			padRight("#"+shortID(o.ID), 10),
			padRight(o.User.Name, 20),
			padRight(fmt.Sprintf("%d items", len(o.Items)), 9),
			padRight(formatRupees(o.Total), 12),
			StatusStyle(status).Render(padRight(string(status), 11)),
			dimStyle.Render(formatDate(o.CreatedAt)))
	}
	header := fmt.Sprintf("%s  %s  %s  %s  %s  %s", padRight("ORDER", 10), padRight("CUSTOMER", 20), padRight("ITEMS", 9), padRight("TOTAL", 12), padRight("STATUS", 11), "PLACED")
	m.list.renderRows(&b, header, rows, m.ctrl, m.ctrl.Loading(), "no orders in this period")

	if m.confirmCancel {
		m.renderCancelConfirm(&b)
	}
	return b.String()
}

func (m ordersModel) renderCancelConfirm(b *strings.Builder) {
	id := m.detailID
	if id == "" {
		if o, ok := m.selected(); ok {
			id = o.ID
		}
	}
	b.WriteString("\n " + warnStyle.Render(fmt.Sprintf("Cancel order #%s?", shortID(id))) + "  " +
		helpEntry("y", "cancel order") + "  " + helpEntry("n", "keep") + "\n")
}

func (m ordersModel) detailView(o domain.Order) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	status := o.CanonicalStatus()
	base := "#505868"
	if c, ok := statusColors[status]; ok {
		base = string(c)
	}

	var b strings.Builder
	b.WriteString(cardBorder(edgeTop, "Order #"+shortID(o.ID), base, m.frame, width) + "\n")
	b.WriteString(" │ " + trackingStrip(status) + "\n")
	b.WriteString(" │\n")
	b.WriteString(" │ " + selectedStyle.Render(o.User.Name) + "  " + dimStyle.Render(o.User.Phone) + "\n")
	if addr := o.ShippingAddress.String(); addr != "" {
		b.WriteString(" │ " + normalStyle.Render(addr) + "\n")
	}
	b.WriteString(" │ " + metaStyle.Render(fmt.Sprintf("placed %s · %s · payment %s (%s)",
		formatDate(o.CreatedAt), formatTime(o.CreatedAt), o.PaymentMethod, o.PaymentStatus)) + "\n")
	b.WriteString(" │\n")
	for _, it := range o.Items {
		b.WriteString(fmt.Sprintf(" │ %s  %s  %s\n",
			padRight(it.Product.Title, 30),
			dimStyle.Render(fmt.Sprintf("x%-3d", it.Quantity)),
			normalStyle.Render(formatRupees(it.Price*float64(it.Quantity)))))
	}
	b.WriteString(" │ " + padRight("", 30) + "       " + tileValueStyle.Render(formatRupees(o.Total)) + "\n")
	if o.Notes != "" {
		b.WriteString(" │\n │ " + dimStyle.Render(oneLine(o.Notes)) + "\n")
	}
	b.WriteString(cardBorder(edgeBottom, "", base, m.frame, width) + "\n")

	if m.confirmCancel {
		m.renderCancelConfirm(&b)
	}
	m.list.renderNotice(&b)
	return b.String()
}

func (m ordersModel) helpKeys() string {
	if m.detailID != "" {
		return helpEntry("s", "advance") + "  " + helpEntry("x", "cancel") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("t", "period") + "  " + helpEntry("s", "advance") + "  " + helpEntry("x", "cancel") + "  " + helpEntry("/", "search")
}

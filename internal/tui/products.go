package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/internal/browser"
	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

type productController = resource.Controller[domain.Product, client.ProductDraft]

const (
	prodTitle = iota
	prodPrice
	prodRetailerPrice
	prodStock
	prodCategory
	prodDescription
	prodAbout
	prodFeatured
	prodTrending
	prodImages
)

type productsModel struct {
	ctrl       *productController
	categories *categoryController
	list       listState
	form       formModel
	formOpen   bool
	editID     string
	catCycle   int // 0 = all, else index+1 into the categories snapshot
	frame      int
	width      int
	height     int
	assetBase  string
}

func newProductsModel(ctrl *productController, categories *categoryController) productsModel {
	return productsModel{ctrl: ctrl, categories: categories}
}

func (m productsModel) Init() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	cmds := []tea.Cmd{refreshCmd(route.Products, m.ctrl)}
	if m.categories != nil && len(m.categories.Snapshot()) == 0 {
		cmds = append(cmds, refreshCmd(route.Categories, m.categories))
	}
	return tea.Batch(cmds...)
}

func (m productsModel) editing() bool {
	_, pending := m.pending()
	return m.formOpen || m.list.searching || pending
}

func (m productsModel) pending() (resource.Confirmation, bool) {
	if m.ctrl == nil {
		return resource.Confirmation{}, false
	}
	return m.ctrl.PendingRemoval()
}

func (m productsModel) selected() (domain.Product, bool) {
	if m.ctrl == nil {
		return domain.Product{}, false
	}
	page := m.ctrl.Page()
	if m.list.cursor < 0 || m.list.cursor >= len(page) {
		return domain.Product{}, false
	}
	return page[m.list.cursor], true
}

// categoryFilter returns the id and label of the active category filter.
func (m productsModel) categoryFilter() (string, string) {
	if m.catCycle == 0 || m.categories == nil {
		return "", "all categories"
	}
	cats := m.categories.Snapshot()
	if m.catCycle-1 >= len(cats) {
		return "", "all categories"
	}
	c := cats[m.catCycle-1]
	return c.ID, c.Title
}

func (m productsModel) filter() resource.Filter {
	id, _ := m.categoryFilter()
	return resource.Filter{Category: id, Search: m.list.search}
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case shimmerTickMsg:
		m.frame++

	case listLoadedMsg:
		if msg.route != route.Products {
			return m, nil
		}
		if msg.err != nil {
			return m, m.list.fail(msg.err)
		}
		m.list.loaded = true
		m.list.clamp(len(m.ctrl.Page()))

	case mutatedMsg:
		if msg.err != nil {
			if m.formOpen {
				return m, failForm(&m.form, msg.err)
			}
			return m, m.list.fail(msg.err)
		}
		m.formOpen = false
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

func (m productsModel) handleKey(msg tea.KeyMsg) (productsModel, tea.Cmd) {
	if m.formOpen {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		if m.form.canceled {
			m.formOpen = false
			return m, nil
		}
		if m.form.submitted {
			m.form.submitted = false
			return m.submit()
		}
		return m, cmd
	}

	if conf, ok := m.pending(); ok {
		switch msg.String() {
		case "y", "Y":
			m.list.setNotice("deleting...", false)
			return m, m.remove(conf)
		case "n", "N", "esc":
			m.ctrl.CancelRemove()
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

	if m.ctrl == nil {
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
		return m, refreshCmd(route.Products, m.ctrl)
	case "f":
		n := 0
		if m.categories != nil {
			n = len(m.categories.Snapshot())
		}
		m.catCycle = (m.catCycle + 1) % (n + 1)
		m.list.cursor = 0
		m.ctrl.SetFilter(m.filter())
		return m, refreshCmd(route.Products, m.ctrl)
	case "a":
		m.openForm(domain.Product{})
	case "e", "enter":
		if p, ok := m.selected(); ok {
			m.openForm(p)
		}
	case "d":
		if p, ok := m.selected(); ok {
			if _, err := m.ctrl.RequestRemove(p.ID); err != nil {
				m.list.setNotice(err.Error(), true)
			}
		}
	case "c":
		if p, ok := m.selected(); ok {
			return m, copyCmd(route.Products, "product id", p.ID)
		}
	case "o":
		if p, ok := m.selected(); ok && len(p.Images) > 0 {
			if err := browser.Open(browser.Resolve(m.assetBase, p.Images[0])); err != nil {
				m.list.setNotice("Could not open image: "+err.Error(), true)
			}
		}
	}
	return m, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func (m *productsModel) openForm(p domain.Product) {
	title := "New product"
	price, retail, stock := "", "", ""
	featured, trending := "no", "no"
	if p.ID != "" {
		title = "Edit " + p.Title
		price = strconv.FormatFloat(p.Price, 'f', -1, 64)
		retail = strconv.FormatFloat(p.RetailerPrice, 'f', -1, 64)
		stock = strconv.Itoa(p.Stock)
		featured, trending = yesNo(p.IsFeatured), yesNo(p.IsTrending)
	}
	m.form = newForm(title,
		formField{label: "title", value: p.Title},
		formField{label: "price", value: price},
		formField{label: "retailer price", value: retail},
		formField{label: "stock", value: stock},
		formField{label: "category", value: p.Category.Label(), hint: "title or id"},
		formField{label: "description", value: p.Description},
		formField{label: "about", value: p.AboutProduct},
		formField{label: "featured", value: featured, hint: "yes/no"},
		formField{label: "trending", value: trending, hint: "yes/no"},
		formField{label: "images", hint: "comma-separated paths, optional"},
	)
	m.editID = p.ID
	m.formOpen = true
}

// resolveCategory maps a typed title or id to a category id.
func (m productsModel) resolveCategory(s string) (string, bool) {
	if m.categories == nil {
		return s, s != ""
	}
	for _, c := range m.categories.Snapshot() {
		if c.ID == s || strings.EqualFold(c.Title, s) {
			return c.ID, true
		}
	}
	return "", false
}

func (m productsModel) submit() (productsModel, tea.Cmd) {
	d := client.ProductDraft{
		Title:        m.form.value(prodTitle),
		Description:  m.form.value(prodDescription),
		AboutProduct: m.form.value(prodAbout),
		IsFeatured:   parseYes(m.form.value(prodFeatured)),
		IsTrending:   parseYes(m.form.value(prodTrending)),
	}
	if d.Title == "" {
		m.form.fail("title is required")
		return m, nil
	}
	var err error
	if d.Price, err = strconv.ParseFloat(m.form.value(prodPrice), 64); err != nil || d.Price < 0 {
		m.form.fail("price must be a number")
		return m, nil
	}
	if v := m.form.value(prodRetailerPrice); v != "" {
		if d.RetailerPrice, err = strconv.ParseFloat(v, 64); err != nil || d.RetailerPrice < 0 {
			m.form.fail("retailer price must be a number")
			return m, nil
		}
	}
	if d.Stock, err = strconv.Atoi(m.form.value(prodStock)); err != nil || d.Stock < 0 {
		m.form.fail("stock must be a whole number")
		return m, nil
	}
	id, ok := m.resolveCategory(m.form.value(prodCategory))
	if !ok {
		m.form.fail("unknown category")
		return m, nil
	}
	d.Category = id
	if d.Images, err = loadAttachments(m.form.value(prodImages)); err != nil {
		m.form.fail(err.Error())
		return m, nil
	}

	m.form.busy = true
	ctrl, editID := m.ctrl, m.editID
	return m, func() tea.Msg {
		var err error
		if editID == "" {
			_, err = ctrl.Create(context.Background(), d)
		} else {
			_, err = ctrl.Update(context.Background(), editID, d)
		}
		return mutatedMsg{route: route.Products, done: fmt.Sprintf("saved %q", d.Title), err: err}
	}
}

func (m productsModel) remove(conf resource.Confirmation) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.ConfirmRemove(context.Background(), conf)
		return mutatedMsg{route: route.Products, done: "product deleted", err: err}
	}
}

func (m productsModel) View() string {
	if m.formOpen {
		return m.form.View()
	}
	if m.ctrl == nil {
		return ""
	}
	var b strings.Builder

	_, catLabel := m.categoryFilter()
	b.WriteString(" " + dimStyle.Render("showing ") + accentStyle.Render(catLabel) + "\n")
	if m.list.searching || m.list.search != "" {
		b.WriteString(renderSearch(m.list.search, m.list.searching, m.frame) + "\n")
	}

	page := m.ctrl.Page()
	rows := make([]string, len(page))
	for i, p := range page {
		stock := successStyle.Render(fmt.Sprintf("%4d", p.Stock))
		if !p.InStock() {
			stock = errorStyle.Render(" out")
		}
		flags := ""
		if p.IsFeatured {
			flags += accentStyle.Render("★")
		}
		if p.IsTrending {
			flags += warnStyle.Render("↑")
		}
		rows[i] = fmt.Sprintf("%s  %s  %s  %s  %s  %s",
			padRight(p.Title, 26),
			padRight(formatRupees(p.Price), 11),
			padRight(formatRupees(p.RetailerPrice), 11),
			stock,
			padRight(p.Category.Label(), 16),
			flags)
	}
	header := fmt.Sprintf("%s  %s  %s  %s  %s", padRight("TITLE", 26), padRight("PRICE", 11), padRight("RETAILER", 11), "STOCK", "CATEGORY")
	m.list.renderRows(&b, header, rows, m.ctrl, m.ctrl.Loading(), "no products found")

	if conf, ok := m.pending(); ok {
		name := conf.ID
		if p, found := m.ctrl.Get(conf.ID); found {
			name = p.Title
		}
		renderConfirm(&b, fmt.Sprintf("product %q", name))
	}
	return b.String()
}

func (m productsModel) helpKeys() string {
	if m.formOpen {
		return m.form.helpKeys()
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("[/]", "page") + "  " + helpEntry("f", "category") + "  " + helpEntry("a", "add") + "  " + helpEntry("e", "edit") + "  " + helpEntry("d", "delete") + "  " + helpEntry("o", "image") + "  " + helpEntry("/", "search")
}

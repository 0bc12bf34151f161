package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/internal/browser"
	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

type categoryController = resource.Controller[domain.Category, client.CategoryDraft]

const (
	catTitle = iota
	catDescription
	catSlug
	catImage
)

type categoriesModel struct {
	ctrl     *categoryController
	list     listState
	form     formModel
	formOpen bool
	editID   string
	frame    int
	width    int
	height   int

	// assetBase resolves relative image paths.
	assetBase string
}

func newCategoriesModel(ctrl *categoryController) categoriesModel {
	return categoriesModel{ctrl: ctrl}
}

func (m categoriesModel) Init() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	return refreshCmd(route.Categories, m.ctrl)
}

func (m categoriesModel) editing() bool {
	_, pending := m.pending()
	return m.formOpen || m.list.searching || pending
}

func (m categoriesModel) pending() (resource.Confirmation, bool) {
	if m.ctrl == nil {
		return resource.Confirmation{}, false
	}
	return m.ctrl.PendingRemoval()
}

func (m categoriesModel) selected() (domain.Category, bool) {
	if m.ctrl == nil {
		return domain.Category{}, false
	}
	page := m.ctrl.Page()
	if m.list.cursor < 0 || m.list.cursor >= len(page) {
		return domain.Category{}, false
	}
	return page[m.list.cursor], true
}

func (m categoriesModel) Update(msg tea.Msg) (categoriesModel, tea.Cmd) {
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

func (m categoriesModel) handleKey(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
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
			m.ctrl.SetFilter(resource.Filter{Search: m.list.search})
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
		return m, refreshCmd(route.Categories, m.ctrl)
	case "a":
		m.openForm(domain.Category{})
	case "e", "enter":
		if c, ok := m.selected(); ok {
			m.openForm(c)
		}
	case "d":
		if c, ok := m.selected(); ok {
			if _, err := m.ctrl.RequestRemove(c.ID); err != nil {
				m.list.setNotice(err.Error(), true)
			}
		}
	case "c":
		if c, ok := m.selected(); ok {
			return m, copyCmd(route.Categories, "category id", c.ID)
		}
	case "o":
		if c, ok := m.selected(); ok && c.Image != "" {
			if err := browser.Open(browser.Resolve(m.assetBase, c.Image)); err != nil {
				m.list.setNotice("Could not open image: "+err.Error(), true)
			}
		}
	}
	return m, nil
}

func (m *categoriesModel) openForm(c domain.Category) {
	title := "New category"
	if c.ID != "" {
		title = "Edit " + c.Title
	}
	m.form = newForm(title,
		formField{label: "title", value: c.Title},
		formField{label: "description", value: c.Description},
		formField{label: "slug", value: c.Slug, hint: "optional"},
		formField{label: "image", hint: "path to a cropped image, optional"},
	)
	m.editID = c.ID
	m.formOpen = true
}

func (m categoriesModel) submit() (categoriesModel, tea.Cmd) {
	d := client.CategoryDraft{
		Title:       m.form.value(catTitle),
		Description: m.form.value(catDescription),
		Slug:        m.form.value(catSlug),
	}
	if d.Title == "" {
		m.form.fail("title is required")
		return m, nil
	}
	files, err := loadAttachments(m.form.value(catImage))
	if err != nil {
		m.form.fail(err.Error())
		return m, nil
	}
	if len(files) > 0 {
		d.Image = &files[0]
	}

	m.form.busy = true
	ctrl, id := m.ctrl, m.editID
	return m, func() tea.Msg {
		var err error
		if id == "" {
			_, err = ctrl.Create(context.Background(), d)
		} else {
			_, err = ctrl.Update(context.Background(), id, d)
		}
		return mutatedMsg{route: route.Categories, done: fmt.Sprintf("saved %q", d.Title), err: err}
	}
}

func (m categoriesModel) remove(conf resource.Confirmation) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.ConfirmRemove(context.Background(), conf)
		return mutatedMsg{route: route.Categories, done: "category deleted", err: err}
	}
}

func (m categoriesModel) View() string {
	if m.formOpen {
		return m.form.View()
	}
	var b strings.Builder
	if m.ctrl == nil {
		return ""
	}

	if m.list.searching || m.list.search != "" {
		b.WriteString(renderSearch(m.list.search, m.list.searching, m.frame) + "\n")
	}

	page := m.ctrl.Page()
	rows := make([]string, len(page))
	for i, c := range page {
		rows[i] = fmt.Sprintf("%s  %s  %s  %s",
			padRight(c.Title, 24),
			padRight(c.Slug, 18),
			padRight(oneLine(c.Description), 36),
			dimStyle.Render(formatDate(c.CreatedAt)))
	}
	header := fmt.Sprintf("%s  %s  %s  %s", padRight("TITLE", 24), padRight("SLUG", 18), padRight("DESCRIPTION", 36), "CREATED")
	m.list.renderRows(&b, header, rows, m.ctrl, m.ctrl.Loading(), "no categories yet, press a to add one")

	if conf, ok := m.pending(); ok {
		name := conf.ID
		if c, found := m.ctrl.Get(conf.ID); found {
			name = c.Title
		}
		renderConfirm(&b, fmt.Sprintf("category %q", name))
	}
	return b.String()
}

func (m categoriesModel) helpKeys() string {
	if m.formOpen {
		return m.form.helpKeys()
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("a", "add") + "  " + helpEntry("e", "edit") + "  " + helpEntry("d", "delete") + "  " + helpEntry("/", "search") + "  " + helpEntry("c", "copy id") + "  " + helpEntry("r", "refresh")
}

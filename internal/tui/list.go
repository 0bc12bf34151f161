package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/resource"
	"github.com/naveenspark/nksadmin/pkg/route"
)

// -- messages shared by list views --

// listLoadedMsg reports that a controller finished a List. The data stays
// in the controller.
type listLoadedMsg struct {
	route route.Route
	err   error
}

// mutatedMsg reports a finished create, update, delete or status change.
type mutatedMsg struct {
	route route.Route
	done  string
	err   error
}

// copiedMsg reports a clipboard write.
type copiedMsg struct {
	route route.Route
	what  string
	err   error
}

// sessionExpiredMsg asks the app to route to the login view. It may
// arrive more than once for the same expiry.
type sessionExpiredMsg struct{}

// SessionExpired is sent by the API client's expiry hook through
// tea.Program.Send.
func SessionExpired() tea.Msg { return sessionExpiredMsg{} }

func expiredCmd() tea.Msg { return sessionExpiredMsg{} }

func isExpired(err error) bool { return errors.Is(err, client.ErrSessionExpired) }

func refreshCmd[T resource.Entity, D any](r route.Route, ctrl *resource.Controller[T, D]) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.Refresh(context.Background())
		return listLoadedMsg{route: r, err: err}
	}
}

func copyCmd(r route.Route, what, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{route: r, what: what, err: clipboard.WriteAll(text)}
	}
}

// listState is the cursor, search, paging and notice handling shared by
// list views. The cursor indexes the current page.
type listState struct {
	cursor    int
	searching bool
	search    string
	notice    string
	noticeErr bool
	loaded    bool
}

func (l *listState) setNotice(msg string, isErr bool) {
	l.notice = msg
	l.noticeErr = isErr
}

// fail records err for display. Superseded results are ignored; an expired
// session also routes to login.
func (l *listState) fail(err error) tea.Cmd {
	re := resource.Classify("", err)
	switch re.Kind {
	case resource.KindCanceled:
		return nil
	case resource.KindSessionExpired:
		l.setNotice(re.Message, true)
		return expiredCmd
	}
	msg := re.Message
	if re.Retryable() {
		msg += retryHint
	}
	l.setNotice(msg, true)
	return nil
}

const retryHint = " (press r to retry)"

// failForm records a failed submit on f. Canceled submits only unlock the
// form; an expired session also routes to login.
func failForm(f *formModel, err error) tea.Cmd {
	re := resource.Classify("", err)
	switch re.Kind {
	case resource.KindCanceled:
		f.busy = false
		return nil
	case resource.KindSessionExpired:
		f.fail(re.Message)
		return expiredCmd
	}
	f.fail(re.Message)
	return nil
}

// clamp keeps the cursor inside a page of n rows.
func (l *listState) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// pager is the paging surface of a controller.
type pager interface {
	PageIndex() int
	PageCount() int
	SetPage(n int)
}

// navKey handles cursor and paging keys. It reports whether the key was used.
func (l *listState) navKey(key string, rows int, p pager) bool {
	switch key {
	case "j", "down":
		if l.cursor < rows-1 {
			l.cursor++
		} else if p.PageIndex() < p.PageCount()-1 {
			p.SetPage(p.PageIndex() + 1)
			l.cursor = 0
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		} else if p.PageIndex() > 0 {
			p.SetPage(p.PageIndex() - 1)
			l.cursor = 0
		}
	case "]", "right":
		p.SetPage(p.PageIndex() + 1)
		l.cursor = 0
	case "[", "left":
		p.SetPage(p.PageIndex() - 1)
		l.cursor = 0
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = max(0, rows-1)
	default:
		return false
	}
	return true
}

// searchKey edits the search query. It reports whether the query changed
// and whether search mode was left.
func (l *listState) searchKey(msg tea.KeyMsg) (changed, done bool) {
	switch msg.String() {
	case "enter":
		l.searching = false
		return false, true
	case "esc":
		l.searching = false
		if l.search != "" {
			l.search = ""
			return true, true
		}
		return false, true
	}
	before := l.search
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			l.search = editRune(l.search, string(r))
		}
	} else {
		l.search = editRune(l.search, msg.String())
	}
	return l.search != before, false
}

// renderRows writes rows with a cursor marker, then the page footer and notice.
func (l listState) renderRows(b *strings.Builder, header string, rows []string, p pager, loading bool, empty string) {
	if header != "" {
		b.WriteString(" " + sectionHeaderStyle.Render(header) + "\n")
	}
	switch {
	case loading && !l.loaded:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(rows) == 0:
		b.WriteString("\n " + dimStyle.Render(empty) + "\n")
	default:
		for i, row := range rows {
			cursor := " "
			if i == l.cursor {
				cursor = accentStyle.Render("▸")
				row = selectedStyle.Render(row)
			}
			b.WriteString(" " + cursor + " " + row + "\n")
		}
	}

	footer := fmt.Sprintf("page %d/%d", p.PageIndex()+1, p.PageCount())
	if loading && l.loaded {
		footer += " · refreshing..."
	}
	b.WriteString("\n " + metaStyle.Render(footer) + "\n")
	l.renderNotice(b)
}

func (l listState) renderNotice(b *strings.Builder) {
	if l.notice == "" {
		return
	}
	if l.noticeErr {
		b.WriteString(" " + errorStyle.Render(l.notice) + "\n")
	} else {
		b.WriteString(" " + successStyle.Render(l.notice) + "\n")
	}
}

// renderConfirm renders the delete prompt for a pending removal.
func renderConfirm(b *strings.Builder, what string) {
	b.WriteString("\n " + warnStyle.Render(fmt.Sprintf("Delete %s? This cannot be undone.", what)) + "  " +
		helpEntry("y", "delete") + "  " + helpEntry("n", "keep") + "\n")
}

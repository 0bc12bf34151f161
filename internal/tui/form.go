package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/client"
)

// formField is one labeled input of a form.
type formField struct {
	label  string
	value  string
	secret bool
	hint   string
}

// formModel is a vertical list of text fields. Tab/shift+tab and up/down
// move focus; enter advances and submits on the last field; ctrl+s submits
// from anywhere; esc cancels.
type formModel struct {
	title     string
	fields    []formField
	focus     int
	submitted bool
	canceled  bool
	busy      bool
	status    string
	statusErr bool
}

func newForm(title string, fields ...formField) formModel {
	return formModel{title: title, fields: fields}
}

func (f formModel) value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return strings.TrimSpace(f.fields[i].value)
}

func (f *formModel) setValue(i int, v string) {
	if i >= 0 && i < len(f.fields) {
		f.fields[i].value = v
	}
}

func (f *formModel) fail(msg string) {
	f.busy = false
	f.status = msg
	f.statusErr = true
}

// Update consumes keys. Callers check submitted/canceled afterwards and
// reset submitted once they have acted on it.
func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || f.busy {
		return f, nil
	}
	n := len(f.fields)
	if n == 0 {
		return f, nil
	}

	switch key.String() {
	case "ctrl+s":
		f.submitted = true
	case "esc":
		f.canceled = true
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "enter":
		if f.focus == n-1 {
			f.submitted = true
		} else {
			f.focus++
		}
	default:
		f.status = ""
		f.statusErr = false
		fld := &f.fields[f.focus]
		if key.Type == tea.KeyRunes && !key.Paste {
			for _, r := range key.Runes {
				fld.value = editRune(fld.value, string(r))
			}
		} else if key.Type == tea.KeyRunes {
			fld.value += oneLine(string(key.Runes))
		} else {
			fld.value = editRune(fld.value, key.String())
		}
	}
	return f, nil
}

func (f formModel) View() string {
	var b strings.Builder
	if f.title != "" {
		b.WriteString(" " + selectedStyle.Render(f.title) + "\n\n")
	}

	width := 0
	for _, fld := range f.fields {
		width = max(width, len(fld.label))
	}

	for i, fld := range f.fields {
		cursor := " "
		style := metaStyle
		if i == f.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		shown := fld.value
		if fld.secret {
			shown = strings.Repeat("•", len([]rune(fld.value)))
		}
		if i == f.focus && !f.busy {
			shown += "█"
		}
		line := fmt.Sprintf(" %s %s  %s", cursor, style.Render(padRight(fld.label, width)), normalStyle.Render(shown))
		if fld.hint != "" && fld.value == "" {
			line += "  " + inputPlaceholderStyle.Render(fld.hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch {
	case f.busy:
		b.WriteString(" " + dimStyle.Render("saving..."))
	case f.status != "" && f.statusErr:
		b.WriteString(" " + errorStyle.Render(f.status))
	case f.status != "":
		b.WriteString(" " + successStyle.Render(f.status))
	}
	return b.String()
}

func (f formModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
}

// loadAttachments reads a comma-separated list of local file paths.
func loadAttachments(paths string) ([]client.Attachment, error) {
	var out []client.Attachment
	for _, p := range strings.Split(paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = expandHome(p)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		out = append(out, client.Attachment{Filename: filepath.Base(p), Content: bytes.NewReader(data)})
	}
	return out, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestForm() formModel {
	return newForm("Test",
		formField{label: "name"},
		formField{label: "password", secret: true},
	)
}

func TestFormTypingAndFocus(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(keyRunes("Asha"))
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f, _ = f.Update(keyRunes("pw"))

	if f.value(0) != "Asha" {
		t.Errorf("field 0 = %q, want Asha", f.value(0))
	}
	if f.value(1) != "pw" {
		t.Errorf("field 1 = %q, want pw", f.value(1))
	}
	if f.focus != 1 {
		t.Errorf("focus = %d, want 1", f.focus)
	}
}

func TestFormShiftTabWraps(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != 1 {
		t.Errorf("focus after shift+tab = %d, want 1", f.focus)
	}
}

func TestFormEnterSubmitsOnLastField(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if f.submitted {
		t.Fatal("enter on first field should advance, not submit")
	}
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !f.submitted {
		t.Error("enter on last field should submit")
	}
}

func TestFormCtrlSSubmits(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !f.submitted {
		t.Error("ctrl+s should submit")
	}
}

func TestFormEscCancels(t *testing.T) {
	f := newTestForm()
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !f.canceled {
		t.Error("esc should cancel")
	}
}

func TestFormBusyIgnoresKeys(t *testing.T) {
	f := newTestForm()
	f.busy = true
	f, _ = f.Update(keyRunes("x"))
	if f.value(0) != "" {
		t.Errorf("busy form accepted input: %q", f.value(0))
	}
}

func TestFormSecretFieldMasked(t *testing.T) {
	f := newTestForm()
	f.setValue(1, "hunter2")
	view := f.View()
	if strings.Contains(view, "hunter2") {
		t.Error("secret field rendered in clear text")
	}
	if !strings.Contains(view, strings.Repeat("•", 7)) {
		t.Error("secret field not masked")
	}
}

func TestFormFailShowsMessage(t *testing.T) {
	f := newTestForm()
	f.busy = true
	f.fail("title is required")
	if f.busy {
		t.Error("fail should clear busy")
	}
	if !strings.Contains(f.View(), "title is required") {
		t.Error("fail message not rendered")
	}
}

func TestLoadAttachments(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(a, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("jpg"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := loadAttachments(a + ", " + b + ",")
	if err != nil {
		t.Fatalf("loadAttachments: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d attachments, want 2", len(files))
	}
	if files[0].Filename != "a.png" || files[1].Filename != "b.jpg" {
		t.Errorf("filenames = %q, %q", files[0].Filename, files[1].Filename)
	}
}

func TestLoadAttachmentsEmpty(t *testing.T) {
	files, err := loadAttachments("  ")
	if err != nil || len(files) != 0 {
		t.Errorf("loadAttachments(blank) = %v, %v", files, err)
	}
}

func TestLoadAttachmentsMissingFile(t *testing.T) {
	_, err := loadAttachments(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "missing.png") {
		t.Errorf("error %q should name the file", err)
	}
}

package domain

import (
	"encoding/json"
	"testing"
)

func TestCategoryRefAcceptsIDOrObject(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"_id":"p1","title":"Switch","category":"c1"}`), &p); err != nil {
		t.Fatalf("unmarshal bare id: %v", err)
	}
	if p.Category.ID != "c1" || p.Category.Label() != "c1" {
		t.Errorf("Category = %+v, want id c1", p.Category)
	}

	if err := json.Unmarshal([]byte(`{"_id":"p1","category":{"_id":"c2","title":"Wiring"}}`), &p); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if p.Category.ID != "c2" || p.Category.Label() != "Wiring" {
		t.Errorf("Category = %+v, want c2/Wiring", p.Category)
	}

	out, err := json.Marshal(p.Category)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"c2"` {
		t.Errorf("marshal = %s, want \"c2\"", out)
	}
}

func TestUserContact(t *testing.T) {
	tests := []struct {
		user    User
		contact string
	}{
		{User{Email: "a@b.in", Phone: "1", Role: RoleUser}, "a@b.in"},
		{User{Phone: "98765", Role: RoleElectrician}, "98765"},
		{User{Role: RoleShopOwner}, "N/A"},
	}
	for _, tt := range tests {
		if got := tt.user.Contact(); got != tt.contact {
			t.Errorf("Contact() = %q, want %q", got, tt.contact)
		}
	}
}

func TestProfileDisplayName(t *testing.T) {
	var p *Profile
	if got := p.DisplayName(); got != "Admin" {
		t.Errorf("nil DisplayName() = %q, want Admin", got)
	}
	p = &Profile{Name: "Mike"}
	if got := p.DisplayName(); got != "Mike" {
		t.Errorf("DisplayName() = %q, want Mike", got)
	}
}

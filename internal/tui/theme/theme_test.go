package theme

import "testing"

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{name: "frappe", themeName: "frappe", wantName: "frappe"},
		{name: "latte", themeName: "latte", wantName: "latte"},
		{name: "mocha", themeName: "mocha", wantName: "mocha"},
		{name: "case insensitive", themeName: " Latte ", wantName: "latte"},
		{name: "empty name uses default", themeName: "", wantName: DefaultName},
		{name: "unknown falls back to default", themeName: "nonexistent", wantName: DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.themeName, err)
			}
			if th.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", th.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_AllAvailableHaveColors(t *testing.T) {
	for _, name := range Available() {
		th, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", name, err)
		}
		for field, v := range map[string]string{
			"bg": th.Bg, "fg": th.Fg, "accent": th.Accent, "block": th.Block,
			"done": th.Done, "warning": th.Warning, "coach": th.Coach,
		} {
			if v == "" {
				t.Errorf("%s: %s is empty", name, field)
			}
		}
	}
}

func TestLatteIsLight(t *testing.T) {
	latte, _ := Load("latte")
	frappe, _ := Load("frappe")
	if !IsLight(latte.Bg) || IsLight(frappe.Bg) {
		t.Error("latte should be light and frappe dark")
	}
}

func TestIsAvailable(t *testing.T) {
	if !IsAvailable("FRAPPE") || IsAvailable("light") {
		t.Error("IsAvailable mismatch")
	}
}

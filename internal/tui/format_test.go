package tui

import (
	"slices"
	"testing"

	"github.com/javiermolinar/lvlup/internal/block"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h30m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.input); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatDay(t *testing.T) {
	catalog := block.NewStaticCatalog(block.DefaultPalette()...)
	a, _ := block.New("a", "h1", 8, 0, 30)
	a.Completed = true
	b, _ := block.New("b", "zz", 9, 15, 45)

	got := FormatDay(testDate, []block.TimeBlock{a, b}, catalog.Habit)
	want := "Monday 2 March 2026\n" +
		"✓ 08:00-08:30 📚 Lectura (30m)\n" +
		"○ 09:15-10:00 zz (45m)\n" +
		"1/2 done, 1h15m planned\n"
	if got != want {
		t.Errorf("FormatDay =\n%s\nwant\n%s", got, want)
	}

	if got := FormatDay(testDate, nil, catalog.Habit); got != "Monday 2 March 2026\n(nothing planned)\n" {
		t.Errorf("empty day = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  []string
	}{
		{"hello world foo", 11, []string{"hello world", "foo"}},
		{"abcdef", 4, []string{"abcd", "ef"}},
		{"🎉 yay", 3, []string{"🎉", "yay"}},
		{"short", 20, []string{"short"}},
		{"unchanged", 0, []string{"unchanged"}},
	}
	for _, tt := range tests {
		if got := WrapText(tt.input, tt.width); !slices.Equal(got, tt.want) {
			t.Errorf("WrapText(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

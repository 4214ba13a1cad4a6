package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds lipgloss colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Current     lipgloss.Color
	Warning     lipgloss.Color
	Coach       lipgloss.Color

	// Block backgrounds. Elapsed blocks that were not completed are muted.
	BlockBg    lipgloss.Color
	BlockBgAlt lipgloss.Color
	DoneBg     lipgloss.Color
	ElapsedBg  lipgloss.Color

	TextOnBlock   lipgloss.Color
	TextOnDone    lipgloss.Color
	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color
}

// NewPalette derives a Palette from t. A nil theme uses DefaultName.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	light := IsLight(t.Bg)
	blockBg := blockShade(t.Block, t.Bg, light)
	doneBg := blockShade(t.Done, t.Bg, light)
	elapsedBg := blend(t.Block, t.Bg, 0.8)

	altTarget := "#ffffff"
	if light {
		altTarget = "#000000"
	}

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Current:     lipgloss.Color(t.Current),
		Warning:     lipgloss.Color(t.Warning),
		Coach:       lipgloss.Color(t.Coach),

		BlockBg:    lipgloss.Color(blockBg),
		BlockBgAlt: lipgloss.Color(blend(blockBg, altTarget, 0.15)),
		DoneBg:     lipgloss.Color(doneBg),
		ElapsedBg:  lipgloss.Color(elapsedBg),

		TextOnBlock:   lipgloss.Color(chooseTextColor(blockBg, t.Fg, t.Bg)),
		TextOnDone:    lipgloss.Color(chooseTextColor(doneBg, t.Fg, t.Bg)),
		TextOnAccent:  lipgloss.Color(chooseTextColor(t.Accent, t.Fg, t.Bg)),
		TextOnWarning: lipgloss.Color(chooseTextColor(t.Warning, t.Fg, t.Bg)),
	}
}

// IsLight reports whether a background color needs dark text.
func IsLight(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// blockShade lightens the accent on light themes and darkens it on dark ones,
// keeping a floor so blocks stay visible.
func blockShade(accent, bg string, light bool) string {
	if light {
		return blend(accent, bg, 0.7)
	}
	r, g, b, ok := parseRGB(accent)
	if !ok {
		return accent
	}
	shade := func(c int) int { return max(40, c/2) }
	return formatRGB(shade(r), shade(g), shade(b))
}

func parseRGB(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func formatRGB(r, g, b int) string {
	clamp := func(c int) int { return min(255, max(0, c)) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}

// blend mixes a towards b by ratio in [0, 1].
func blend(a, b string, ratio float64) string {
	ar, ag, ab, ok1 := parseRGB(a)
	br, bg, bb, ok2 := parseRGB(b)
	if !ok1 || !ok2 {
		return a
	}
	ratio = min(1, max(0, ratio))
	mix := func(x, y int) int { return int(float64(x)*(1-ratio) + float64(y)*ratio) }
	return formatRGB(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1, l2 := relativeLuminance(a), relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := parseRGB(hex)
	if !ok {
		return 0
	}
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

func linear(c int) float64 {
	v := float64(c) / 255
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Shimmer animation for the header logo and order cards.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

type rgb struct{ r, g, b float64 }

var (
	bronze = rgb{58, 42, 16}
	amber  = rgb{251, 191, 36}
)

// parseHex reads #RRGGBB. Anything else is mid grey.
func parseHex(hex string) rgb {
	var r, g, b int
	if n, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil || n != 3 {
		return rgb{128, 128, 128}
	}
	return rgb{float64(r), float64(g), float64(b)}
}

func (c rgb) scale(f float64) rgb { return rgb{c.r * f, c.g * f, c.b * f} }

// mix returns the color t of the way from c to to, t in [0,1].
func (c rgb) mix(to rgb, t float64) lipgloss.Color {
	t = math.Max(0, math.Min(1, t))
	ch := func(a, b float64) int { return int(math.Round(a + t*(b-a))) }
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", ch(c.r, to.r), ch(c.g, to.g), ch(c.b, to.b)))
}

// wave is a travelling sine in [0,1] sharpened by gamma.
func wave(phase, gamma float64) float64 {
	return math.Pow(math.Sin(phase)*0.5+0.5, gamma)
}

// renderShimmerLogo renders "N K S" with a slow amber tide rolling across it.
func renderShimmerLogo(frame int) string {
	const letters = "NKS"
	t := float64(frame)
	drift := math.Sin(t*0.023) * 2
	tide := math.Sin(t*0.035) * 0.12

	parts := make([]string, len(letters))
	for i := range letters {
		x := float64(i) / float64(len(letters)-1)
		level := wave(t*0.1-x*3+drift, 1.3)*0.75 + tide + 0.18
		parts[i] = lipgloss.NewStyle().Bold(true).
			Foreground(bronze.mix(amber, math.Max(level, 0.05))).
			Render(letters[i : i+1])
	}
	return strings.Join(parts, "  ") + "  " + metaStyle.Render("admin")
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	tileValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 2).
			Width(24)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	borderColor = lipgloss.Color("#2a2a3a")

	statusColors = map[domain.OrderStatus]lipgloss.Color{
		domain.StatusPlaced:     lipgloss.Color("#60a0e0"),
		domain.StatusProcessing: lipgloss.Color("#f0944a"),
		domain.StatusShipped:    lipgloss.Color("#c084e0"),
		domain.StatusDelivered:  lipgloss.Color("#4ade80"),
		domain.StatusCancelled:  lipgloss.Color("#e06060"),
	}

	roleColors = map[string]lipgloss.Color{
		domain.RoleAdmin:       lipgloss.Color("#f59e0b"),
		domain.RoleUser:        lipgloss.Color("#60a0e0"),
		domain.RoleShopOwner:   lipgloss.Color("#3ecce4"),
		domain.RoleElectrician: lipgloss.Color("#c084e0"),
	}
)

// StatusStyle returns a bold style colored for an order status.
func StatusStyle(s domain.OrderStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// RoleStyle returns a bold style colored for an account role.
func RoleStyle(role string) lipgloss.Style {
	if c, ok := roleColors[role]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// RoleBadge returns a short colored badge, e.g. "[electrician]".
func RoleBadge(role string) string {
	if role == "" {
		return ""
	}
	return RoleStyle(role).Render("[" + role + "]")
}

type cardEdge int

const (
	edgeTop cardEdge = iota
	edgeBottom
)

// cardAnimFrames is how long a card border keeps pulsing after it opens.
const cardAnimFrames = 20

// cardBorder draws the top (optionally labelled) or bottom edge of a detail
// card in base color. While frame is within cardAnimFrames the line pulses.
func cardBorder(edge cardEdge, label, base string, frame, width int) string {
	w := max(width-4, 10)
	animate := frame > 0 && frame <= cardAnimFrames

	var prefix, line string
	switch {
	case edge == edgeBottom:
		line = " └" + strings.Repeat("─", w)
	case label == "":
		line = " ┌" + strings.Repeat("─", w)
	default:
		prefix = " ┌ " + label + " "
		line = strings.Repeat("─", max(w-lipgloss.Width(prefix)+2, 1))
	}
	if !animate {
		return prefix + lipgloss.NewStyle().Foreground(lipgloss.Color(base)).Render(line)
	}
	return prefix + pulseLine(line, parseHex(base), frame)
}

// pulseLine colors each rune of line between 40% and 100% of c.
func pulseLine(line string, c rgb, frame int) string {
	runes := []rune(line)
	dim := c.scale(0.4)
	t := float64(frame)
	var b strings.Builder
	for i, r := range runes {
		x := float64(i) / float64(max(len(runes), 1))
		b.WriteString(lipgloss.NewStyle().Foreground(dim.mix(c, wave(t*0.3-x*4, 1.5))).Render(string(r)))
	}
	return b.String()
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

func helpItems(apiURL string) []helpItem {
	return []helpItem{
		{"API", apiURL, apiURL},
		{"Categories feed", apiURL + "/categories", apiURL + "/categories"},
		{"Products feed", apiURL + "/products", apiURL + "/products"},
	}
}

// helpView renders the help overlay with a cursor over the links.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("N K S   A D M I N")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	keys := []struct{ key, desc string }{
		{"1-6", "Switch section"},
		{"j/k", "Move cursor"},
		{"[ / ]", "Previous / next page"},
		{"/", "Search"},
		{"r", "Refresh"},
		{"L", "Log out"},
		{"q", "Quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-8s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-18s", item.label))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(fmt.Sprintf("%-18s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// VIKAL color palette
var (
	ColorBackground    = lipgloss.Color("#0A0A0C")
	ColorSurface       = lipgloss.Color("#16161A")
	ColorSurfaceLight  = lipgloss.Color("#232329")
	ColorBorder        = lipgloss.Color("#2E2E36")
	ColorAccent        = lipgloss.Color("#FFDD57")
	ColorAccentDim     = lipgloss.Color("#B89B2E")
	ColorBlue          = lipgloss.Color("#4DABF7")
	ColorTextPrimary   = lipgloss.Color("#F5F5F5")
	ColorTextSecondary = lipgloss.Color("#A0AEC0")
	ColorTextMuted     = lipgloss.Color("#6B7280")
	ColorSuccess       = lipgloss.Color("#51CF66")
	ColorWarning       = lipgloss.Color("#FCC419")
	ColorError         = lipgloss.Color("#FF6B6B")
)

// Theme contains all lipgloss styles for the TUI
type Theme struct {
	// Header
	HeaderContainer lipgloss.Style
	Logo            lipgloss.Style
	LogoDot         lipgloss.Style
	UserName        lipgloss.Style

	// Tabs
	TabContainer lipgloss.Style
	TabActive    lipgloss.Style
	TabInactive  lipgloss.Style

	// Footer
	FooterContainer lipgloss.Style

	// Content
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	ValueMuted    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusInfo    lipgloss.Style

	// Panels
	Panel        lipgloss.Style
	Sidebar      lipgloss.Style
	SectionTitle lipgloss.Style
	Flashcard    lipgloss.Style
	Tips         lipgloss.Style

	// Buttons and badges
	ButtonPrimary lipgloss.Style
	BadgeAccent   lipgloss.Style
	BadgeMuted    lipgloss.Style
	BadgePro      lipgloss.Style

	// Modal
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	ModalContent   lipgloss.Style

	// Inputs
	Input      lipgloss.Style
	InputFocus lipgloss.Style

	// Lists
	ListItem       lipgloss.Style
	ListItemActive lipgloss.Style

	// Misc
	Divider lipgloss.Style
	Help    lipgloss.Style
	HelpKey lipgloss.Style
	Spinner lipgloss.Style
	Code    lipgloss.Style
}

// NewTheme creates the VIKAL theme
func NewTheme() *Theme {
	t := &Theme{}

	t.HeaderContainer = lipgloss.NewStyle().
		Background(ColorSurface).
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorBorder)

	t.Logo = lipgloss.NewStyle().
		Foreground(ColorTextPrimary).
		Bold(true)

	t.LogoDot = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	t.UserName = lipgloss.NewStyle().
		Foreground(ColorTextSecondary)

	t.TabContainer = lipgloss.NewStyle().
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorAccent).
		Bold(true)

	t.TabInactive = lipgloss.NewStyle().
		Foreground(ColorTextSecondary)

	t.FooterContainer = lipgloss.NewStyle().
		Background(ColorSurface).
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(ColorBorder)

	t.Title = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Italic(true)

	t.Label = lipgloss.NewStyle().
		Foreground(ColorTextSecondary)

	t.Value = lipgloss.NewStyle().
		Foreground(ColorTextPrimary)

	t.ValueMuted = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	t.StatusSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	t.StatusError = lipgloss.NewStyle().Foreground(ColorError)
	t.StatusWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	t.StatusInfo = lipgloss.NewStyle().Foreground(ColorBlue)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	t.SectionTitle = lipgloss.NewStyle().
		Foreground(ColorBlue).
		Bold(true)

	t.Flashcard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(ColorAccentDim).
		PaddingLeft(1)

	t.Tips = lipgloss.NewStyle().
		Foreground(ColorWarning)

	t.ButtonPrimary = lipgloss.NewStyle().
		Background(ColorAccent).
		Foreground(ColorBackground).
		Padding(0, 2).
		Bold(true)

	t.BadgeAccent = lipgloss.NewStyle().
		Background(ColorBlue).
		Foreground(lipgloss.Color("#000000")).
		Padding(0, 1).
		Bold(true)

	t.BadgeMuted = lipgloss.NewStyle().
		Background(ColorSurfaceLight).
		Foreground(ColorTextMuted).
		Padding(0, 1)

	t.BadgePro = lipgloss.NewStyle().
		Background(ColorAccent).
		Foreground(lipgloss.Color("#000000")).
		Padding(0, 1).
		Bold(true)

	t.ModalContainer = lipgloss.NewStyle().
		Background(ColorSurface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 2).
		Width(56)

	t.ModalTitle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	t.ModalContent = lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Width(52)

	t.Input = lipgloss.NewStyle().
		Foreground(ColorTextPrimary).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	t.InputFocus = t.Input.
		BorderForeground(ColorAccent)

	t.ListItem = lipgloss.NewStyle().
		Foreground(ColorTextSecondary)

	t.ListItemActive = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	t.Divider = lipgloss.NewStyle().Foreground(ColorBorder)
	t.Help = lipgloss.NewStyle().Foreground(ColorTextMuted)
	t.HelpKey = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	t.Spinner = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Code = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	return t
}

// DefaultTheme is the global theme instance
var DefaultTheme = NewTheme()

// HorizontalLine creates a horizontal divider
func (t *Theme) HorizontalLine(width int) string {
	if width < 0 {
		width = 0
	}
	return t.Divider.Render(strings.Repeat("─", width))
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kavaltui/kaval/internal/catalog"
)

// Color palette: emerald primary plus one accent per service category.
var (
	colorPrimary   = lipgloss.Color("#10b981")
	colorText      = lipgloss.Color("#dcdcdc")
	colorSecondary = lipgloss.Color("#8c8c91")
	colorMuted     = lipgloss.Color("#505055")
	colorBorder    = lipgloss.Color("#3c3c41")
	colorSuccess   = lipgloss.Color("#22c55e")
	colorWarning   = lipgloss.Color("#eab308")
	colorError     = lipgloss.Color("#ef4444")
	colorSelection = lipgloss.Color("#1e406e")

	colorDevServer = lipgloss.Color("#22c55e")
	colorDatabase  = lipgloss.Color("#eab308")
	colorCache     = lipgloss.Color("#a855f7")
	colorContainer = lipgloss.Color("#60a5fa")
)

// Layout styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	taglineStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	tableBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	textStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Background(colorSelection).
			Foreground(lipgloss.Color("#ffffff"))

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSecondary).
				Width(9)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(1, 3)

	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorError)

	// Category cell styles.
	devServerStyle = lipgloss.NewStyle().Foreground(colorDevServer)
	databaseStyle  = lipgloss.NewStyle().Foreground(colorDatabase)
	cacheStyle     = lipgloss.NewStyle().Foreground(colorCache)
	containerStyle = lipgloss.NewStyle().Foreground(colorContainer)
	infraStyle     = lipgloss.NewStyle().Foreground(colorSecondary)
)

// categoryStyle returns the cell style for a service category.
func categoryStyle(c catalog.Category) lipgloss.Style {
	switch c {
	case catalog.CategoryDevServer:
		return devServerStyle
	case catalog.CategoryDatabase:
		return databaseStyle
	case catalog.CategoryCache:
		return cacheStyle
	case catalog.CategoryContainer:
		return containerStyle
	case catalog.CategoryInfra:
		return infraStyle
	default:
		return textStyle
	}
}

// cpuStyle colors cpu load: red above 50%, yellow above 20%.
func cpuStyle(cpu float64) lipgloss.Style {
	switch {
	case cpu > 50:
		return errorStyle
	case cpu > 20:
		return warningStyle
	default:
		return textStyle
	}
}

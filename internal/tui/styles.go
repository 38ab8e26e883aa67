package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary   = lipgloss.Color("#00D7FF") // cyan: spinner / tool name
	colorSecondary = lipgloss.Color("#AF87FF") // purple: target
	colorSuccess   = lipgloss.Color("#87FF5F") // green: OK
	colorWarning   = lipgloss.Color("#FFD700") // yellow: PARTIAL
	colorDanger    = lipgloss.Color("#FF5555") // red: FAILED
	colorMuted     = lipgloss.Color("#555577") // dim gray: durations / hints
)

// Status line
var (
	statusOKStyle      = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	statusPartialStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	statusFailedStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	toolNameStyle      = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	targetStyle        = lipgloss.NewStyle().Foreground(colorSecondary)
	mutedStyle         = lipgloss.NewStyle().Foreground(colorMuted)
)

// spinnerStyle は実行中スピナーの色。
var spinnerStyle = lipgloss.NewStyle().Foreground(colorPrimary)

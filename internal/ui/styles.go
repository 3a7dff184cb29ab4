// Package ui holds the shared Lip Gloss styles plus small print
// helpers used by both the CLI output and the interactive view.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Title   = lipgloss.NewStyle().Bold(true)
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	Accent  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	Muted   = lipgloss.NewStyle().Faint(true)
	Error   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	Selected = lipgloss.NewStyle().Bold(true).Reverse(true)
	Help     = lipgloss.NewStyle().Faint(true)
)

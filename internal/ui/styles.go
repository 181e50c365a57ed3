package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/pikchrmd/internal/config"
)

// StyleManager encapsulates the terminal styles used for diagnostics and
// block listings
type StyleManager struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
	Error  lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Dim:    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8")),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// NewStyles returns styles with colors taken from cfg
func NewStyles(cfg *config.Config) *StyleManager {
	s := DefaultStyles()
	s.LoadFromConfig(cfg)
	return s
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig(cfg *config.Config) {
	headerColor := parseANSIColor(cfg.ColorHeader)
	dimColor := parseANSIColor(cfg.ColorDim)
	errorColor := parseANSIColor(cfg.ColorError)
	borderColor := lipgloss.Color(cfg.ColorBorder)

	s.Header = s.Header.Foreground(headerColor)
	s.Dim = s.Dim.Foreground(dimColor)
	s.Error = s.Error.Foreground(errorColor)
	s.Border = s.Border.Foreground(borderColor)
}

// RenderError formats an error for the diagnostic channel
func (s *StyleManager) RenderError(err error) string {
	return s.Error.Render("Error:") + " " + err.Error()
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

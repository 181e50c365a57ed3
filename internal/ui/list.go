package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gubarz/pikchrmd/internal/filter"
	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
)

// BlockTable renders a block inventory as a table.
// Blocks that would not be rendered are dimmed.
func (s *StyleManager) BlockTable(blocks []filter.BlockInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers("#", "LINES", "BYTES", "MODIFIERS", "OUTPUT").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case row < len(blocks) && !blocks[row].Decision.Included:
				return s.Dim
			default:
				return s.Cell
			}
		})

	for _, b := range blocks {
		t.Row(
			strconv.Itoa(b.Number),
			lineSpan(b),
			strconv.Itoa(b.Size),
			b.Modifiers,
			Describe(b.Decision),
		)
	}
	return t.Render()
}

func lineSpan(b filter.BlockInfo) string {
	if !b.Closed {
		return strconv.Itoa(b.StartLine) + "-EOF"
	}
	return strconv.Itoa(b.StartLine) + "-" + strconv.Itoa(b.EndLine)
}

// Describe summarizes a decision as a space-separated list of keywords
func Describe(dec parser.Decision) string {
	if !dec.Included {
		return "skip"
	}
	parts := []string{"svg"}
	if !dec.Bare {
		parts[0] = "div+svg"
	}
	if dec.Requote {
		parts = append(parts, parser.ModRequote)
	}
	if dec.Delimiters {
		parts = append(parts, parser.ModDelimiters)
	}
	if dec.Details {
		parts = append(parts, parser.ModDetails)
	}
	if dec.Open {
		parts = append(parts, parser.ModOpen)
	}
	if dec.Flags.Has(render.CurrentColor) {
		parts = append(parts, "current-color")
	}
	return strings.Join(parts, " ")
}

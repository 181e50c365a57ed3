package parser

import (
	"github.com/gubarz/pikchrmd/internal/render"
)

// Modifier words recognized on a start line. Unknown words are ignored.
const (
	ModBareSVG      = "bare-svg"
	ModSVGOnly      = "svg-only" // legacy synonym for bare-svg
	ModRequote      = "requote"
	ModDelimiters   = "delimiters"
	ModDetails      = "details"
	ModOpen         = "open"
	ModCurrentColor = "x-current-color"
)

// Filter selects which diagrams are rendered.
// At most one of Modifier and Number is set; the zero Filter passes all.
type Filter struct {
	Modifier string // only diagrams whose start line carries this word
	Number   int    // only the diagram with this 1-based ordinal
}

// Active reports whether the filter restricts anything
func (f Filter) Active() bool {
	return f.Modifier != "" || f.Number > 0
}

// Match reports whether the diagram numbered number, opened by line, passes
func (f Filter) Match(line string, number int) bool {
	switch {
	case f.Modifier != "":
		return ContainsWord(line, f.Modifier)
	case f.Number > 0:
		return number == f.Number
	default:
		return true
	}
}

// Defaults are the run-wide settings individual modifiers are layered on
type Defaults struct {
	Bare            bool
	Requote         bool
	Details         bool
	Flags           render.Flags
	IncludeDiagrams bool
	Filter          Filter
}

// Decision is the resolved per-diagram rendering plan.
// It is computed once from the start line and never modified.
type Decision struct {
	Number     int
	Bare       bool
	Requote    bool
	Delimiters bool
	Details    bool
	Open       bool
	Flags      render.Flags
	Included   bool
}

// Resolve computes the Decision for the diagram numbered number
// whose start delimiter is line.
func Resolve(line string, number int, d Defaults) Decision {
	dec := Decision{
		Number: number,
		Bare:   d.Bare || ContainsWord(line, ModBareSVG) || ContainsWord(line, ModSVGOnly),
		Flags:  d.Flags,
	}

	// requote gates delimiters and details, details gates open
	dec.Requote = d.Requote || ContainsWord(line, ModRequote)
	dec.Delimiters = dec.Requote && ContainsWord(line, ModDelimiters)
	dec.Details = dec.Requote && (d.Details || ContainsWord(line, ModDetails))
	dec.Open = dec.Details && ContainsWord(line, ModOpen)

	if ContainsWord(line, ModCurrentColor) {
		dec.Flags |= render.CurrentColor
	}

	dec.Included = d.IncludeDiagrams && d.Filter.Match(line, number)
	return dec
}

package parser

import (
	"regexp"
	"strings"
)

// DefaultTag is the fence info word that marks a diagram block
const DefaultTag = "pikchr"

var (
	// .PE, or a fence of three or more backticks or tildes, then only whitespace
	endRegex = regexp.MustCompile("^(\\.PE|```+|~~~+)[[:space:]]*$")
)

// Delimiters recognizes the start and end lines of a diagram block.
// Both the troff convention (.PS/.PE) and Markdown fences are accepted.
// Fence lengths are not compared between start and end.
type Delimiters struct {
	start *regexp.Regexp
}

// NewDelimiters compiles start patterns for the given fence tag.
// An empty tag selects DefaultTag.
func NewDelimiters(tag string) *Delimiters {
	if tag == "" {
		tag = DefaultTag
	}
	pattern := "(?s)^(\\.PS|(?:```+|~~~+)[[:space:]]*" + regexp.QuoteMeta(tag) + ")([[:space:]].*)?$"
	return &Delimiters{start: regexp.MustCompile(pattern)}
}

// IsStart reports whether line opens a diagram block
func (d *Delimiters) IsStart(line []byte) bool {
	return d.start.Match(line)
}

// IsEnd reports whether line closes a diagram block
func (d *Delimiters) IsEnd(line []byte) bool {
	return endRegex.Match(line)
}

// Modifiers returns the trimmed text following the start delimiter,
// or "" if line is not a start line.
func (d *Delimiters) Modifiers(line []byte) string {
	m := d.start.FindSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[2]))
}

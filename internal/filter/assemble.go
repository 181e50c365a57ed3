package filter

import (
	"fmt"
	"io"
	"strings"

	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
)

// requoteIndent turns requoted source into a Markdown indented code block
const requoteIndent = "    "

// assemble writes the output for one rendered diagram: the error text, or the
// (optionally wrapped) markup followed by any requoted source.
// Write errors are left on e.w.
func (e *emitter) assemble(res render.Result, dec parser.Decision, source, end []byte) {
	w := e.w

	if res.Failed() {
		io.WriteString(w, res.Markup)
		io.WriteString(w, "\n\n")
		return
	}

	if !dec.Bare {
		fmt.Fprintf(w, "<div style=\"max-width:%dpx\">\n", res.Width)
	}
	io.WriteString(w, injectAttrs(res.Markup, e.cfg.Attrs))
	if !dec.Bare {
		io.WriteString(w, "</div>\n")
	}
	io.WriteString(w, "\n")

	if dec.Requote && e.cfg.Document {
		e.requote(dec, source, end)
	}
}

// requote writes the block source as an indented code block
func (e *emitter) requote(dec parser.Decision, source, end []byte) {
	w := e.w

	if dec.Details {
		open := ""
		if dec.Open {
			open = " open"
		}
		fmt.Fprintf(w, "<details%s>\n\n<summary%s>%s</summary>\n\n",
			open, attrList(e.cfg.SummaryAttrs), e.cfg.Summary)
	}

	iw := &indentWriter{w: w, prefix: requoteIndent}
	iw.Write(source)
	if dec.Delimiters && end != nil {
		iw.Write(end)
	}

	if dec.Details {
		io.WriteString(w, "\n</details>\n\n")
	}
}

// injectAttrs inserts attrs at the end of the first <svg> start tag.
// Markup without one is returned unchanged.
func injectAttrs(markup, attrs string) string {
	if attrs == "" {
		return markup
	}
	start := strings.Index(markup, "<svg")
	if start < 0 {
		return markup
	}
	end := strings.IndexByte(markup[start:], '>')
	if end < 0 {
		return markup
	}
	end += start
	if markup[end-1] == '/' {
		end--
	}
	return markup[:end] + " " + attrs + markup[end:]
}

// attrList formats an attribute string for splicing into a start tag
func attrList(attrs string) string {
	if attrs == "" {
		return ""
	}
	return " " + attrs
}

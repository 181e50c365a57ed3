// Package filter splices rendered diagrams into a streamed document.
//
// Input is consumed strictly forward, one line at a time. Lines outside
// diagram blocks are copied through (unless document output is disabled);
// each block is buffered until its end delimiter or the end of input, then
// rendered and replaced by the renderer's markup.
package filter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gubarz/pikchrmd/internal/buffer"
	"github.com/gubarz/pikchrmd/internal/config"
	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
)

// ErrRenderFailed matches the error returned by Run when at least one
// diagram failed to render.
var ErrRenderFailed = errors.New("diagram failed to render")

// RenderError reports how many diagrams of a run failed to render.
// The failures themselves are written inline in the output.
type RenderError struct {
	Failed int
	Total  int
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%d of %d diagrams failed to render", e.Failed, e.Total)
}

// Is makes RenderError match ErrRenderFailed
func (e *RenderError) Is(target error) bool {
	return target == ErrRenderFailed
}

// Stats counts what happened to the blocks of the last run
type Stats struct {
	Blocks   int // start delimiters seen
	Rendered int // rendered successfully
	Failed   int // rejected by the renderer
	Skipped  int // excluded, or empty at end of input
}

// ============================================================================
// Filter
// ============================================================================

// Filter renders the diagram blocks of a document
type Filter struct {
	cfg      *config.Config
	renderer render.Renderer
	delims   *parser.Delimiters
	logger   *log.Logger
	capacity int
	stats    Stats
}

// Option configures a Filter
type Option func(*Filter)

// WithLogger sets the logger receiving per-diagram diagnostics
func WithLogger(l *log.Logger) Option {
	return func(f *Filter) {
		f.logger = l
	}
}

// WithCapacity sets the initial block buffer capacity
func WithCapacity(n int) Option {
	return func(f *Filter) {
		f.capacity = n
	}
}

// New creates a filter rendering with r under cfg
func New(cfg *config.Config, r render.Renderer, opts ...Option) *Filter {
	f := &Filter{
		cfg:      cfg,
		renderer: r,
		delims:   parser.NewDelimiters(cfg.Tag),
		logger:   log.New(io.Discard, "", 0),
		capacity: buffer.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stats returns the counters of the most recent Run
func (f *Filter) Stats() Stats {
	return f.stats
}

// Run filters in to out.
//
// Read errors stop processing at once. Output is buffered, so a failing
// writer is only noticed when the buffer spills or is flushed at the end;
// processing stops there, and blocks read before that point may already
// have been rendered. A diagram that fails to render does not stop the
// run: its error text is written in place of the diagram, the remaining
// input is processed, and Run returns a *RenderError.
func (f *Filter) Run(in io.Reader, out io.Writer) (rerr error) {
	f.stats = Stats{}

	bw := bufio.NewWriter(out)
	ew := &errWriter{Writer: bw}
	defer func() {
		// an output failure outranks any render failure
		err := bw.Flush()
		if err != nil && ew.err == nil && (rerr == nil || errors.Is(rerr, ErrRenderFailed)) {
			rerr = fmt.Errorf("write output: %w", err)
		}
	}()

	acc := buffer.New(f.capacity)
	acc.MaxSize = f.cfg.MaxBlock

	m := &machine{
		delims:   f.delims,
		defaults: f.cfg.Defaults(),
		acc:      acc,
	}
	if err := m.run(in, &emitter{Filter: f, w: ew}); err != nil {
		return err
	}

	f.logger.Printf("%d diagrams: %d rendered, %d failed, %d skipped (block buffer %d bytes)",
		f.stats.Blocks, f.stats.Rendered, f.stats.Failed, f.stats.Skipped, acc.Cap())

	if f.stats.Failed > 0 {
		return &RenderError{
			Failed: f.stats.Failed,
			Total:  f.stats.Rendered + f.stats.Failed,
		}
	}
	return nil
}

// emitter is the blockHandler that renders and writes output
type emitter struct {
	*Filter
	w *errWriter
}

func (e *emitter) text(line []byte) error {
	if !e.cfg.Document {
		return nil
	}
	e.w.Write(line)
	return e.writeErr()
}

func (e *emitter) block(info BlockInfo, acc *buffer.Accumulator, end []byte) error {
	e.stats.Blocks++
	dec := info.Decision

	if !dec.Included {
		e.stats.Skipped++
		e.logger.Printf("diagram %d (line %d): skipped", info.Number, info.StartLine)
		return nil
	}
	if !info.Closed && info.Size == 0 {
		e.stats.Skipped++
		e.logger.Printf("diagram %d (line %d): empty at end of input", info.Number, info.StartLine)
		return nil
	}

	res := e.renderer.Render(string(acc.Submission()), e.cfg.Class, dec.Flags)
	if res.Failed() {
		e.stats.Failed++
		e.logger.Printf("diagram %d (line %d): render failed", info.Number, info.StartLine)
	} else {
		e.stats.Rendered++
		e.logger.Printf("diagram %d (line %d): %dx%d", info.Number, info.StartLine, res.Width, res.Height)
	}

	e.assemble(res, dec, acc.Bytes(), end)
	return e.writeErr()
}

func (e *emitter) writeErr() error {
	if e.w.err != nil {
		return fmt.Errorf("write output: %w", e.w.err)
	}
	return nil
}

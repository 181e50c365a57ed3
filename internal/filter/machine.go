package filter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gubarz/pikchrmd/internal/buffer"
	"github.com/gubarz/pikchrmd/internal/parser"
)

// BlockInfo describes one recognized diagram block
type BlockInfo struct {
	Number    int    // 1-based ordinal among start lines
	StartLine int    // 1-based line number of the start delimiter
	EndLine   int    // line number of the end delimiter; 0 if unterminated
	Closed    bool   // false when end of input closed the block
	Modifiers string // text following the start delimiter
	Size      int    // bytes submitted to the renderer
	Decision  parser.Decision
}

// blockHandler receives the events of a single pass over a document
type blockHandler interface {
	// text is called for each line outside any block
	text(line []byte) error
	// block is called once per block; end is nil if input ran out first.
	// acc is cleared when block returns.
	block(info BlockInfo, acc *buffer.Accumulator, end []byte) error
}

// machine is the outside/inside-block line state machine
type machine struct {
	delims   *parser.Delimiters
	defaults parser.Defaults
	acc      *buffer.Accumulator
}

// run reads in one line at a time until end of input, a read error, or
// a handler error.
func (m *machine) run(in io.Reader, h blockHandler) error {
	br := bufio.NewReader(in)
	m.acc.Clear()

	var (
		inside bool
		cur    BlockInfo
		lineNo int
		number int
	)

	for {
		line, rerr := br.ReadBytes('\n')
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("read input: %w", rerr)
		}

		if len(line) > 0 {
			lineNo++
			switch {
			case inside && m.delims.IsEnd(line):
				inside = false
				cur.EndLine = lineNo
				cur.Closed = true
				if err := m.finish(h, cur, line); err != nil {
					return err
				}

			case inside:
				if err := m.acc.Append(line); err != nil {
					return fmt.Errorf("accumulate block %d: %w", cur.Number, err)
				}

			case m.delims.IsStart(line):
				inside = true
				number++
				cur = BlockInfo{
					Number:    number,
					StartLine: lineNo,
					Modifiers: m.delims.Modifiers(line),
					Decision:  parser.Resolve(string(line), number, m.defaults),
				}
				if cur.Decision.Delimiters {
					if err := m.acc.Append(line); err != nil {
						return fmt.Errorf("accumulate block %d: %w", cur.Number, err)
					}
				}
				m.acc.Mark()

			default:
				if err := h.text(line); err != nil {
					return err
				}
			}
		}

		if rerr == io.EOF {
			if inside {
				return m.finish(h, cur, nil)
			}
			return nil
		}
	}
}

func (m *machine) finish(h blockHandler, info BlockInfo, end []byte) error {
	defer m.acc.Clear()
	info.Size = m.acc.Len() - m.acc.Offset()
	return h.block(info, m.acc, end)
}

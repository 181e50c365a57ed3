package buffer

import (
	"errors"
	"math"
)

// DefaultCapacity is the initial capacity used by callers without a preference
const DefaultCapacity = 8192

// ErrTooLarge is returned when an append cannot be satisfied
var ErrTooLarge = errors.New("buffer: block too large")

// Accumulator collects the lines of one diagram block.
//
// Its backing array only grows, doubling as needed, and is reused across
// blocks. A zero terminator byte always follows the used bytes. A mark
// separates a retained prefix (an echoed start delimiter) from the text
// submitted to the renderer.
type Accumulator struct {
	buf     []byte // len(buf) == used bytes + terminator
	mark    int
	MaxSize int // used-byte limit; 0 means unlimited
}

// New creates an accumulator with the given initial capacity.
// A capacity below 1 is raised to 1.
func New(capacity int) *Accumulator {
	if capacity < 1 {
		capacity = 1
	}
	buf := make([]byte, 1, capacity)
	return &Accumulator{buf: buf}
}

// Len returns the number of used bytes
func (a *Accumulator) Len() int {
	if len(a.buf) == 0 {
		return 0
	}
	return len(a.buf) - 1
}

// Cap returns the capacity of the backing array
func (a *Accumulator) Cap() int {
	return cap(a.buf)
}

// Offset returns the submission mark
func (a *Accumulator) Offset() int {
	return a.mark
}

// Append copies p onto the end of the used bytes, growing the backing array
// by doubling. Nothing is appended when it fails.
func (a *Accumulator) Append(p []byte) error {
	if len(a.buf) == 0 {
		a.buf = append(make([]byte, 0, DefaultCapacity), 0)
	}
	n := a.Len()
	if len(p) > math.MaxInt-n-1 {
		return ErrTooLarge
	}
	need := n + len(p) + 1
	if a.MaxSize > 0 && need-1 > a.MaxSize {
		return ErrTooLarge
	}
	if need > cap(a.buf) {
		if err := a.grow(need); err != nil {
			return err
		}
	}
	a.buf = a.buf[:need]
	copy(a.buf[n:], p)
	a.buf[need-1] = 0
	return nil
}

func (a *Accumulator) grow(need int) error {
	size := cap(a.buf)
	for size < need {
		if size > math.MaxInt/2 {
			return ErrTooLarge
		}
		size *= 2
	}
	buf := make([]byte, len(a.buf), size)
	copy(buf, a.buf)
	a.buf = buf
	return nil
}

// Clear logically empties the accumulator and resets the mark.
// Capacity is retained.
func (a *Accumulator) Clear() {
	if len(a.buf) == 0 {
		return
	}
	a.buf = a.buf[:1]
	a.buf[0] = 0
	a.mark = 0
}

// Mark records the current length as the start of the submitted text
func (a *Accumulator) Mark() {
	a.mark = a.Len()
}

// Bytes returns every used byte, including any retained prefix.
// The slice aliases the accumulator until the next Append or Clear.
func (a *Accumulator) Bytes() []byte {
	return a.buf[:a.Len()]
}

// Submission returns the used bytes after the mark
func (a *Accumulator) Submission() []byte {
	return a.buf[a.mark:a.Len()]
}

// terminated returns the submission followed by its zero terminator
func (a *Accumulator) terminated() []byte {
	if len(a.buf) == 0 {
		return []byte{0}
	}
	return a.buf[a.mark:]
}

package filter

import (
	"bytes"
	"io"
)

// errWriter wraps a writer, tracking its first error and preventing further
// writes after it.
type errWriter struct {
	io.Writer
	err error
}

// Write passes through to Writer if err is nil, retaining any returned error
func (ew *errWriter) Write(p []byte) (n int, err error) {
	if ew.err == nil {
		n, ew.err = ew.Writer.Write(p)
		if ew.err == nil && n != len(p) {
			ew.err = io.ErrShortWrite
		}
	}
	return n, ew.err
}

// indentWriter prepends prefix to every line written through it
type indentWriter struct {
	w      io.Writer
	prefix string
	mid    bool // inside a line; no prefix due
}

func (iw *indentWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if !iw.mid {
			if _, err := io.WriteString(iw.w, iw.prefix); err != nil {
				return n, err
			}
			iw.mid = true
		}
		line := p
		if i := bytes.IndexByte(p, '\n'); i >= 0 {
			line = p[:i+1]
			iw.mid = false
		}
		m, err := iw.w.Write(line)
		n += m
		if err != nil {
			return n, err
		}
		p = p[len(line):]
	}
	return n, nil
}

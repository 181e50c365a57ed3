package render

// Flags is the rendering flags bitmask understood by pikchr
type Flags uint

const (
	// PlaintextErrors reports errors as text/plain instead of HTML
	PlaintextErrors Flags = 1 << iota
	// DarkMode inverts colors for dark backgrounds
	DarkMode
	// CurrentColor paints black with the inherited "currentColor"
	CurrentColor
)

// Has reports whether all bits of f2 are set in f
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Result is the outcome of rendering one diagram.
// A negative Width signals failure; Markup then holds the error description.
type Result struct {
	Markup string
	Width  int
	Height int
}

// Failed reports whether the renderer rejected the diagram
func (r Result) Failed() bool {
	return r.Width < 0
}

// Failure builds a failed Result carrying the given message
func Failure(message string) Result {
	return Result{Markup: message, Width: -1, Height: -1}
}

// Renderer converts diagram source into markup.
// Implementations must be synchronous and always populate Markup.
type Renderer interface {
	Render(source, class string, flags Flags) Result
}

// Func adapts an ordinary function into a Renderer
type Func func(source, class string, flags Flags) Result

// Render calls f
func (f Func) Render(source, class string, flags Flags) Result {
	return f(source, class, flags)
}

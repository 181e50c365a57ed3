package render

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCommand is the renderer executable looked up on PATH
const DefaultCommand = "pikchr"

// ============================================================================
// Runner Interface
// ============================================================================

// Runner executes the renderer binary and captures its output
type Runner interface {
	Run(name string, args []string) (stdout, stderr []byte, err error)
}

// execRunner implements Runner using os/exec
type execRunner struct{}

// Run executes name with args, returning everything it printed
func (execRunner) Run(name string, args []string) ([]byte, []byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Command Renderer
// ============================================================================

// Command renders diagrams by running the pikchr command-line tool
type Command struct {
	path   string
	runner Runner
}

// NewCommand creates a renderer running the executable at path.
// An empty path selects DefaultCommand.
func NewCommand(path string) *Command {
	if path == "" {
		path = DefaultCommand
	}
	return &Command{
		path:   path,
		runner: execRunner{},
	}
}

// WithRunner sets a custom runner implementation (useful for testing)
func (c *Command) WithRunner(r Runner) *Command {
	c.runner = r
	return c
}

// Path returns the configured executable
func (c *Command) Path() string {
	return c.path
}

// Available reports whether the executable can be found
func (c *Command) Available() bool {
	return commandExists(c.path)
}

// Render writes source to a temporary file and converts it with pikchr
func (c *Command) Render(source, class string, flags Flags) Result {
	f, err := os.CreateTemp("", "pikchrmd-*.pikchr")
	if err != nil {
		return errorResult(err, flags)
	}
	defer os.Remove(f.Name())

	_, err = f.WriteString(source)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errorResult(err, flags)
	}

	args := []string{"--svg-only"}
	if flags.Has(DarkMode) {
		args = append(args, "--dark-mode")
	}
	args = append(args, f.Name())

	stdout, stderr, err := c.runner.Run(c.path, args)
	if err != nil {
		// --svg-only always reports diagram errors as plain text
		if msg := strings.TrimRight(string(stdout)+string(stderr), "\n"); msg != "" {
			return failure(msg, flags)
		}
		return errorResult(fmt.Errorf("%s: %w", c.path, err), flags)
	}

	// the tool follows the svg with an extra newline
	return Finish(strings.TrimSuffix(string(stdout), "\n"), class, flags)
}

// errorResult formats an error raised outside of pikchr itself
func errorResult(err error, flags Flags) Result {
	return failure("ERROR: "+err.Error(), flags)
}

// failure wraps plaintext error text in HTML unless PlaintextErrors is set
func failure(msg string, flags Flags) Result {
	if flags.Has(PlaintextErrors) {
		return Failure(msg)
	}
	return Failure("<div><pre>" + html.EscapeString(msg) + "</pre></div>")
}

// ============================================================================
// SVG Post-processing
// ============================================================================

var (
	svgTagRegex   = regexp.MustCompile(`<svg\b[^>]*>`)
	classRegex    = regexp.MustCompile(`\sclass=("[^"]*"|'[^']*')`)
	viewBoxRegex  = regexp.MustCompile(`\sviewBox=["']\s*[-\d.]+[\s,]+[-\d.]+[\s,]+([\d.]+)[\s,]+([\d.]+)\s*["']`)
	widthRegex    = regexp.MustCompile(`\swidth=["']([\d.]+)(?:px)?["']`)
	heightRegex   = regexp.MustCompile(`\sheight=["']([\d.]+)(?:px)?["']`)
	blackColorRef = "rgb(0,0,0)"
)

// Finish applies class and flag handling the command-line tool cannot do
// itself, and measures the resulting SVG.
func Finish(markup, class string, flags Flags) Result {
	if class != "" {
		markup = setClass(markup, class)
	}
	if flags.Has(CurrentColor) {
		markup = strings.ReplaceAll(markup, blackColorRef, "currentColor")
	}
	w, h := Dimensions(markup)
	return Result{Markup: markup, Width: w, Height: h}
}

// setClass replaces or adds the class attribute of the first <svg> tag
func setClass(markup, class string) string {
	loc := svgTagRegex.FindStringIndex(markup)
	if loc == nil {
		return markup
	}
	tag := markup[loc[0]:loc[1]]
	attr := ` class="` + html.EscapeString(class) + `"`
	if classRegex.MatchString(tag) {
		tag = classRegex.ReplaceAllLiteralString(tag, attr)
	} else {
		tag = "<svg" + attr + tag[len("<svg"):]
	}
	return markup[:loc[0]] + tag + markup[loc[1]:]
}

// Dimensions reports the pixel size of the first <svg> element, truncated
// to whole pixels.
// Explicit width/height attributes win over the viewBox.
func Dimensions(markup string) (width, height int) {
	tag := svgTagRegex.FindString(markup)
	if tag == "" {
		return 0, 0
	}
	if m := viewBoxRegex.FindStringSubmatch(tag); m != nil {
		width, height = pixels(m[1]), pixels(m[2])
	}
	if m := widthRegex.FindStringSubmatch(tag); m != nil {
		width = pixels(m[1])
	}
	if m := heightRegex.FindStringSubmatch(tag); m != nil {
		height = pixels(m[1])
	}
	return width, height
}

func pixels(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

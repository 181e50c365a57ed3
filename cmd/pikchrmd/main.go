package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/renameio"
	"github.com/gubarz/pikchrmd/internal/config"
	"github.com/gubarz/pikchrmd/internal/filter"
	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
	"github.com/gubarz/pikchrmd/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "unversioned"

const modifierHelp = `
Zero or more modifiers can follow the start delimiter (.PS, ` + "```pikchr" + ` or
~~~pikchr). Unrecognized modifiers are ignored (but can be matched with -N).
Known modifiers:

  bare-svg    -- bare mode, don't wrap this <svg> in <div> to style max-width
  svg-only    -- same as bare-svg
  requote     -- output the Pikchr source in an indented code block
  delimiters  -- include the start and end delimiter lines in a requote
  details     -- if requoting, put source in a <details> element
  open        -- default <details> to visible/open
  x-current-color -- Experimental, use "currentColor" instead of "rgb(0,0,0)"
                     for black, to paint with the inherited foreground color.`

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List the diagram blocks of a document",
	Long: `Scans a document with the same rules as the filter and prints a table of
the diagram blocks found, with the modifiers on each start line and what the
filter would do with them. Nothing is rendered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var rootCmd = &cobra.Command{
	Use:   "pikchrmd [file...]",
	Short: "Render Pikchr diagrams embedded in documents",
	Long: `A pipeline-friendly filter that replaces Pikchr diagram blocks in Markdown
or troff documents with rendered SVG.

Reads from stdin and writes to stdout when no files are given.
` + modifierHelp,
	RunE:          runFilter,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	v          = viper.New()
	configFile string
	styles     = ui.DefaultStyles()
)

// flagKeys maps config keys to the flags overriding them
var flagKeys = map[string]string{
	"class":            "class",
	"attrs":            "attrs",
	"summary":          "summary",
	"summary_attrs":    "summary-attrs",
	"bare":             "bare",
	"plaintext_errors": "plaintext-errors",
	"dark_mode":        "dark-mode",
	"current_color":    "current-color",
	"requote":          "requote",
	"details":          "details",
	"only_number":      "number",
	"only_modifier":    "modifier",
	"tag":              "tag",
	"renderer":         "renderer",
	"max_block":        "max-block",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(listCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: pikchrmd.yaml in ~/.config/pikchrmd, ~ or .)")
	flags.StringP("class", "c", "", `Add class="aClass" to <svg> tags`)
	flags.StringP("attrs", "a", config.DefaultAttrs, "Add attrs to <svg> tags")
	flags.StringP("summary", "s", config.DefaultSummary, "Summary text for <details>")
	flags.String("summary-attrs", "", "Attributes for the <summary> tag")
	flags.BoolP("bare", "b", false, "Bare mode, don't wrap <svg> in <div> to style max-width")
	flags.BoolP("plaintext-errors", "p", false, "Output plaintext error messages instead of HTML")
	flags.BoolP("dark-mode", "d", false, "Set dark mode")
	flags.Bool("current-color", false, "Paint black with currentColor in every diagram")
	flags.Bool("requote", false, "Requote every diagram")
	flags.Bool("details", false, "Put every requote in a <details> element")
	flags.BoolP("quiet", "q", false, "Don't copy non-diagram input to output")
	flags.BoolP("remove-diagrams", "Q", false, "Remove all diagrams")
	flags.IntP("number", "n", 0, "Only translate diagram number # (starting from 1)")
	flags.StringP("modifier", "N", "", "Only translate diagrams that have modifier mod")
	flags.String("tag", parser.DefaultTag, "Fence info word that marks a diagram")
	flags.String("renderer", render.DefaultCommand, "Pikchr executable")
	flags.Int("max-block", 0, "Largest diagram source accepted, in bytes (0: unlimited)")

	rootCmd.Flags().BoolP("write", "w", false, "Rewrite the given files in place")
	rootCmd.Flags().BoolP("verbose", "v", false, "Log per-diagram decisions to stderr")

	for key, name := range flagKeys {
		v.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	if err := config.Init(v, configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// loadConfig applies the inverted switches and builds the run configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if q, _ := cmd.Flags().GetBool("quiet"); q {
		v.Set("document", false)
	}
	if qq, _ := cmd.Flags().GetBool("remove-diagrams"); qq {
		v.Set("diagrams", false)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	styles = ui.NewStyles(cfg)
	return cfg, nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = log.New(os.Stderr, "[pikchrmd] ", 0)
	}

	renderer := render.NewCommand(cfg.Renderer)
	if !renderer.Available() {
		logger.Printf("renderer %q not found in PATH", renderer.Path())
	}
	flt := filter.New(cfg, renderer, filter.WithLogger(logger))

	if len(args) == 0 {
		return flt.Run(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	write, _ := cmd.Flags().GetBool("write")
	return filterFiles(flt, args, write, cmd.OutOrStdout())
}

// filterFiles filters each path in turn. Render failures move on to the
// next file and are reported at the end; any other error stops the run.
func filterFiles(flt *filter.Filter, paths []string, write bool, out io.Writer) error {
	var failed error
	for _, path := range paths {
		err := filterFile(flt, path, write, out)
		if errors.Is(err, filter.ErrRenderFailed) {
			failed = err
			continue
		}
		if err != nil {
			return err
		}
	}
	return failed
}

// filterFile filters one named file to out, or back into itself when write
// is set. The rewrite is atomic and happens even if some diagrams failed.
func filterFile(flt *filter.Filter, path string, write bool, out io.Writer) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	if !write {
		if err := flt.Run(in, out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	pending, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer pending.Cleanup()

	if err := pending.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	runErr := flt.Run(in, pending)
	if runErr != nil && !errors.Is(runErr, filter.ErrRenderFailed) {
		return fmt.Errorf("%s: %w", path, runErr)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", path, runErr)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	blocks, err := filter.Inspect(in, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(blocks) == 0 {
		fmt.Fprintln(out, "No diagrams found")
		return nil
	}
	fmt.Fprintln(out, styles.BlockTable(blocks))
	return nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		// render failures are already reported inline in the output
		if !errors.Is(err, filter.ErrRenderFailed) {
			fmt.Fprintln(os.Stderr, styles.RenderError(err))
		}
		os.Exit(1)
	}
}

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gubarz/pikchrmd/internal/config"
	"github.com/gubarz/pikchrmd/internal/filter"
	"github.com/gubarz/pikchrmd/internal/render"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRender draws every source as an empty 10x5 svg and fails on "bad"
var fakeRender = render.Func(func(source, class string, flags render.Flags) render.Result {
	if strings.Contains(source, "bad") {
		return render.Failure("ERROR: bad diagram")
	}
	return render.Result{Markup: "<svg></svg>\n", Width: 10, Height: 5}
})

const (
	docInput  = "# doc\n```pikchr\nbox\n```\ntext\n```pikchr\nbad\n```\n"
	docOutput = "# doc\n" +
		"<div style=\"max-width:10px\">\n<svg style='font-size:initial;'></svg>\n</div>\n\n" +
		"text\n" +
		"ERROR: bad diagram\n\n"
	goodInput  = "```pikchr\nbox\n```\n"
	goodOutput = "<div style=\"max-width:10px\">\n<svg style='font-size:initial;'></svg>\n</div>\n\n"
)

// useTestViper swaps in a fresh viper bound to the command flags, and
// restores every flag to its default afterwards.
func useTestViper(t *testing.T) {
	t.Helper()
	saved := v
	v = viper.New()
	config.SetDefaults(v)
	for key, name := range flagKeys {
		require.NoError(t, v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)))
	}
	t.Cleanup(func() {
		v = saved
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})
}

func newTestFilter(t *testing.T) *filter.Filter {
	t.Helper()
	cv := viper.New()
	config.SetDefaults(cv)
	cfg, err := config.Load(cv)
	require.NoError(t, err)
	return filter.New(cfg, fakeRender)
}

func writeDoc(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestLoadConfig_switches(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		document bool
		diagrams bool
	}{
		{name: "defaults", args: nil, document: true, diagrams: true},
		{name: "quiet", args: []string{"-q"}, document: false, diagrams: true},
		{name: "remove diagrams", args: []string{"-Q"}, document: true, diagrams: false},
		{name: "both", args: []string{"-q", "-Q"}, document: false, diagrams: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useTestViper(t)
			require.NoError(t, rootCmd.ParseFlags(tt.args))

			cfg, err := loadConfig(rootCmd)
			require.NoError(t, err)
			assert.Equal(t, tt.document, cfg.Document)
			assert.Equal(t, tt.diagrams, cfg.Diagrams)
		})
	}
}

func TestLoadConfig_flags(t *testing.T) {
	useTestViper(t)
	require.NoError(t, rootCmd.ParseFlags([]string{"-c", "dia", "-b", "-N", "wide"}))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "dia", cfg.Class)
	assert.True(t, cfg.Bare)
	assert.Equal(t, "wide", cfg.OnlyModifier)
}

func TestLoadConfig_conflictingFilters(t *testing.T) {
	useTestViper(t)
	require.NoError(t, rootCmd.ParseFlags([]string{"-n", "2", "-N", "wide"}))

	_, err := loadConfig(rootCmd)
	assert.ErrorIs(t, err, config.ErrConflictingFilters)
}

func TestFilterFile_toOutput(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.md", docInput, 0o644)

	var out bytes.Buffer
	err := filterFile(newTestFilter(t), path, false, &out)
	assert.ErrorIs(t, err, filter.ErrRenderFailed)
	assert.Equal(t, docOutput, out.String())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, docInput, string(b), "input must be left alone without -w")
}

func TestFilterFile_rewrite(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", docInput, 0o640)

	var out bytes.Buffer
	err := filterFile(newTestFilter(t), path, true, &out)

	var rerr *filter.RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 1, rerr.Failed)
	assert.Equal(t, 2, rerr.Total)
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, out.String())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, docOutput, string(b))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file may be left behind")
}

func TestFilterFile_missing(t *testing.T) {
	err := filterFile(newTestFilter(t), filepath.Join(t.TempDir(), "nope.md"), true, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, filter.ErrRenderFailed)
}

func TestFilterFiles(t *testing.T) {
	dir := t.TempDir()
	failing := writeDoc(t, dir, "failing.md", docInput, 0o644)
	good := writeDoc(t, dir, "good.md", goodInput, 0o644)
	missing := filepath.Join(dir, "missing.md")

	t.Run("render failure moves on", func(t *testing.T) {
		var out bytes.Buffer
		err := filterFiles(newTestFilter(t), []string{failing, good}, false, &out)
		assert.ErrorIs(t, err, filter.ErrRenderFailed)
		assert.Equal(t, docOutput+goodOutput, out.String())
	})

	t.Run("io error stops", func(t *testing.T) {
		var out bytes.Buffer
		err := filterFiles(newTestFilter(t), []string{failing, missing, good}, false, &out)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, docOutput, out.String())
	})

	t.Run("all rendered", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, filterFiles(newTestFilter(t), []string{good, good}, false, &out))
		assert.Equal(t, goodOutput+goodOutput, out.String())
	})
}

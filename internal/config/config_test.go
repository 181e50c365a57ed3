package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gubarz/pikchrmd/internal/parser"
	"github.com/gubarz/pikchrmd/internal/render"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultAttrs, cfg.Attrs)
	assert.Equal(t, DefaultSummary, cfg.Summary)
	assert.True(t, cfg.Document)
	assert.True(t, cfg.Diagrams)
	assert.Equal(t, parser.DefaultTag, cfg.Tag)
	assert.Equal(t, render.DefaultCommand, cfg.Renderer)
	assert.Equal(t, render.Flags(0), cfg.BaseFlags())
	assert.False(t, cfg.Filter().Active())
}

func TestInit_configFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pikchrmd.yaml")
	yaml := "class: diagram\nrequote: true\nonly_modifier: mine\ndark_mode: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("PIKCHRMD_SUMMARY", "Diagram source")
	t.Setenv("PIKCHRMD_BARE", "true")

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "diagram", cfg.Class)
	assert.Equal(t, "Diagram source", cfg.Summary)
	assert.True(t, cfg.Bare)
	assert.Equal(t, render.DarkMode, cfg.BaseFlags())

	d := cfg.Defaults()
	assert.True(t, d.Requote)
	assert.True(t, d.Bare)
	assert.True(t, d.IncludeDiagrams)
	assert.Equal(t, parser.Filter{Modifier: "mine"}, d.Filter)
}

func TestInit_missingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBaseFlags(t *testing.T) {
	cfg := Config{PlaintextErrors: true, DarkMode: true, CurrentColor: true}
	flags := cfg.BaseFlags()
	assert.True(t, flags.Has(render.PlaintextErrors))
	assert.True(t, flags.Has(render.DarkMode))
	assert.True(t, flags.Has(render.CurrentColor))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "no filter", cfg: Config{}},
		{name: "number only", cfg: Config{OnlyNumber: 2}},
		{name: "modifier only", cfg: Config{OnlyModifier: "x"}},
		{name: "both filters", cfg: Config{OnlyNumber: 2, OnlyModifier: "x"}, wantErr: true},
		{name: "negative number", cfg: Config{OnlyNumber: -1}, wantErr: true},
		{name: "negative max block", cfg: Config{MaxBlock: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	conflict := Config{OnlyNumber: 1, OnlyModifier: "x"}
	assert.ErrorIs(t, conflict.Validate(), ErrConflictingFilters)
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torokati44/binaryen/internal/config"
	"github.com/torokati44/binaryen/internal/wat"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ns", formatDuration(500*time.Nanosecond))
	assert.Equal(t, "1.5μs", formatDuration(1500*time.Nanosecond))
	assert.Equal(t, "2.0ms", formatDuration(2*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.00min", formatDuration(2*time.Minute))
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wat")
	require.NoError(t, os.WriteFile(input, []byte("(module)"), 0644))

	file := config.Default()
	file.Passes = []string{"vacuum"}
	file.Workers = 2
	require.NoError(t, file.Save(filepath.Join(dir, config.ConfigFileName)))

	cfg, err := loadConfig(options{}, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"vacuum"}, cfg.Passes)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Debug)

	cfg, err = loadConfig(options{passList: "const-fold, use-bulk-memory-intrinsics", debug: true}, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"const-fold", "use-bulk-memory-intrinsics"}, cfg.Passes)
	assert.True(t, cfg.Debug)

	_, err = loadConfig(options{passList: "inline"}, input)
	assert.Error(t, err)
}

func TestCountStores(t *testing.T) {
	module, diags, err := wat.LoadString("count.wat", `(func $f (param $p i32) (param $v i32)
  (i32.store8 (local.get $p) (local.get $v))
  (block (i32.store8 offset=1 (local.get $p) (local.get $v)))
  (memory.fill (local.get $p) (local.get $v) (i32.const 4)))`)
	require.NoError(t, err)
	require.Empty(t, diags)

	assert.Equal(t, 2, countStores(module))
}

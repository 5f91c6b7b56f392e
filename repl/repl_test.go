package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torokati44/binaryen/internal/passes"
)

func init() {
	color.NoColor = true
}

func newPipeline(t *testing.T) *passes.Pipeline {
	t.Helper()
	pipeline, err := passes.NewPipelineFromNames(passes.DefaultPasses, 1, passes.Options{})
	require.NoError(t, err)
	return pipeline
}

func TestStartMergesStores(t *testing.T) {
	in := strings.NewReader(
		"(func $f (param $p i32) (param $v i32) (i32.store8 (local.get $p) (local.get $v)) (i32.store8 (i32.add (local.get $p) (i32.const 1)) (local.get $v)))\n")
	var out strings.Builder

	require.NoError(t, Start(context.Background(), in, &out, newPipeline(t)))

	assert.Contains(t, out.String(), PROMPT)
	assert.Contains(t, out.String(), "(func $f (param $p i32) (param $v i32)\n  (memory.fill (local.get $p) (local.get $v) (i32.const 2))\n)\n")
	assert.Contains(t, out.String(), ";; use-bulk-memory-intrinsics: 1 merges")
}

func TestStartReportsErrors(t *testing.T) {
	in := strings.NewReader("(func $f\n\n(func $g (drop (local.get 0)))\n")
	var out strings.Builder

	require.NoError(t, Start(context.Background(), in, &out, newPipeline(t)))

	assert.Contains(t, out.String(), "Syntax error")
	assert.Contains(t, out.String(), "unknown local '0'")
	assert.NotContains(t, out.String(), "(func $g")
}

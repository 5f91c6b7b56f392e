package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torokati44/binaryen/grammar"
)

const source = `;; three byte stores
(module
  (memory 1)
  (func $clear (param $p i32) (param $v i32)
    (i32.store8 offset=2 (local.get $p) (local.get $v))
    (memory.fill (i32.add (local.get 0) (i32.const -4)) (local.get 1) (i32.const 0x10))
  )
)`

func TestParseModule(t *testing.T) {
	file, err := grammar.ParseString("test.wat", source)
	require.NoError(t, err)
	require.Len(t, file.Exprs, 1)

	module := file.Exprs[0]
	assert.Equal(t, "module", module.Head)
	require.Len(t, module.Args, 2)
	assert.Equal(t, 2, module.Pos.Line)

	memory := module.Args[0].List
	require.NotNil(t, memory)
	assert.Equal(t, "memory", memory.Head)
	assert.Equal(t, "1", *memory.Args[0].Number)

	fn := module.Args[1].List
	require.NotNil(t, fn)
	assert.Equal(t, "func", fn.Head)
	assert.Equal(t, "$clear", *fn.Args[0].Ident)
	assert.Equal(t, "param", fn.Args[1].List.Head)
	assert.Equal(t, "$p", fn.Args[1].List.Args[0].Text())
	assert.Equal(t, "i32", fn.Args[1].List.Args[1].Text())

	store := fn.Args[3].List
	assert.Equal(t, "i32.store8", store.Head)
	assert.Equal(t, "offset=2", *store.Args[0].Keyword)
	assert.Equal(t, "(local.get $p)", store.Args[1].String())

	fill := fn.Args[4].List
	assert.Equal(t, "(i32.add (local.get 0) (i32.const -4))", fill.Args[0].String())
	assert.Equal(t, "0x10", fill.Args[2].List.Args[0].Text())
}

func TestParseRoundTripString(t *testing.T) {
	file, err := grammar.ParseString("test.wat", "(func $f (drop (i32.const 1)))")
	require.NoError(t, err)
	assert.Equal(t, "(func $f (drop (i32.const 1)))\n", file.String())
}

func TestParseErrors(t *testing.T) {
	src := "(module\n  (func $f (i32.const 1)\n"
	_, err := grammar.ParseString("broken.wat", src)
	require.Error(t, err)

	formatted := grammar.FormatParseError(src, err)
	assert.Contains(t, formatted, "Syntax error")
}

func TestParseRejectsBareAtoms(t *testing.T) {
	_, err := grammar.ParseString("bare.wat", "i32.const 1")
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	_, err := grammar.ParseFile("does/not/exist.wat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

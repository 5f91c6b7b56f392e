package wat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/ir"
)

func load(t *testing.T, src string) (*ir.Module, []errors.CompilerError) {
	t.Helper()
	module, diags, err := LoadString("test.wat", src)
	require.NoError(t, err)
	return module, diags
}

func codes(diags []errors.CompilerError) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestLoadStores(t *testing.T) {
	module, diags := load(t, `(module
  (memory 1)
  (func $clear (param $p i32) (param $v i32) (local $t i64)
    (i32.store8 (local.get $p) (local.get $v))
    (i32.store8 offset=3 (i32.add (local.get 0) (i32.const 1)) (local.get 1))
    (i64.store align=8 (local.get 0) (local.get $t))
  )
)`)
	require.Empty(t, diags)
	assert.Equal(t, 1, module.Memory)
	require.Len(t, module.Functions, 1)

	fn := module.Functions[0]
	assert.Equal(t, "clear", fn.Name)
	assert.Equal(t, []ir.Type{ir.I32, ir.I32}, fn.Params)
	assert.Equal(t, []ir.Type{ir.I64}, fn.Vars)
	assert.Equal(t, map[int]string{0: "p", 1: "v", 2: "t"}, fn.LocalNames)

	body := fn.Body.(*ir.Block)
	require.Len(t, body.List, 3)

	first := body.List[0].(*ir.Store)
	assert.Equal(t, 1, first.Bytes)
	assert.Equal(t, uint32(0), first.Offset)
	assert.Equal(t, 0, first.Ptr.(*ir.LocalGet).Index)

	second := body.List[1].(*ir.Store)
	assert.Equal(t, uint32(3), second.Offset)
	add := second.Ptr.(*ir.Binary)
	assert.Equal(t, ir.AddInt32, add.Op)
	assert.Equal(t, int32(1), add.Right.(*ir.Const).Value.GetI32())

	third := body.List[2].(*ir.Store)
	assert.Equal(t, 8, third.Bytes)
	assert.Equal(t, ir.I64, third.ValueType)
	assert.Equal(t, ir.I64, third.Value.Type())
}

func TestLoadBareFunctions(t *testing.T) {
	module, diags := load(t, `
(func $callee (param i32) (result i32) (local.get 0))
(func $caller (result i32) (call $callee (i32.const 7)))
`)
	require.Empty(t, diags)
	assert.Equal(t, -1, module.Memory)
	require.Len(t, module.Functions, 2)

	caller := module.GetFunction("caller")
	require.NotNil(t, caller)
	call := caller.Body.(*ir.Block).List[0].(*ir.Call)
	assert.Equal(t, "callee", call.Target)
	assert.Equal(t, ir.I32, call.Type())
	assert.Equal(t, ir.I32, caller.Body.Type())
}

func TestLoadControlFlow(t *testing.T) {
	module, diags := load(t, `(module
  (memory 1)
  (func $f (param i32)
    (block $out
      (loop $top
        (if (local.get 0)
          (then (memory.fill (local.get 0) (i32.const 0) (i32.const 4)))
          (else (nop)))))
    (return))
)`)
	require.Empty(t, diags)

	body := module.Functions[0].Body.(*ir.Block)
	require.Len(t, body.List, 2)
	block := body.List[0].(*ir.Block)
	assert.Equal(t, "out", block.Name)
	loop := block.List[0].(*ir.Loop)
	assert.Equal(t, "top", loop.Name)
	iff := loop.Body.(*ir.Block).List[0].(*ir.If)
	assert.NotNil(t, iff.IfFalse)
	fill := iff.IfTrue.(*ir.Block).List[0]
	assert.Equal(t, ir.MemoryFillKind, fill.Kind())
	assert.Nil(t, body.List[1].(*ir.Return).Value)
}

func TestLoadRoundTrip(t *testing.T) {
	src := `(module
  (memory 1)
  (func $f (param $p i32) (param $v i32)
    (i32.store8 offset=2 (local.get $p) (local.get $v))
    (memory.fill (i32.add (local.get $p) (i32.const 4)) (local.get $v) (i32.const 8))
  )
)
`
	module, diags := load(t, src)
	require.Empty(t, diags)
	assert.Equal(t, src, ir.Print(module))
}

func TestLoadLiterals(t *testing.T) {
	module, diags := load(t, `(func $f
  (drop (i32.const 0xffffffff))
  (drop (i32.const -2147483648))
  (drop (i64.const 0x10))
  (drop (f64.const 1.5)))`)
	require.Empty(t, diags)

	list := module.Functions[0].Body.(*ir.Block).List
	value := func(i int) ir.Literal { return list[i].(*ir.Drop).Value.(*ir.Const).Value }
	assert.Equal(t, int32(-1), value(0).GetI32())
	assert.Equal(t, int32(-2147483648), value(1).GetI32())
	assert.Equal(t, int64(16), value(2).GetI64())
	assert.Equal(t, 1.5, value(3).GetF64())
}

func TestLoadDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unknown instruction", `(func $f (i32.stor (i32.const 0) (i32.const 0)))`, errors.ErrorUnknownInstruction},
		{"wrong arity", `(func $f (drop (i32.add (i32.const 1))))`, errors.ErrorWrongArity},
		{"bad literal", `(func $f (drop (i32.const 0x100000000)))`, errors.ErrorInvalidLiteral},
		{"bad memarg", `(func $f (param i32) (i32.store offset=-1 (local.get 0) (local.get 0)))`, errors.ErrorInvalidMemarg},
		{"unexpected form", `(memory 1)`, errors.ErrorUnexpectedForm},
		{"unknown local", `(func $f (param i32) (drop (local.get 1)))`, errors.ErrorUnknownLocal},
		{"unknown named local", `(func $f (param $a i32) (drop (local.get $b)))`, errors.ErrorUnknownLocal},
		{"unknown function", `(func $f (call $g))`, errors.ErrorUnknownFunction},
		{"unknown type", `(func $f (param i8))`, errors.ErrorUnknownType},
		{"type mismatch", `(func $f (param i64) (drop (i32.add (local.get 0) (i32.const 1))))`, errors.ErrorTypeMismatch},
		{"duplicate function", `(func $f) (func $f)`, errors.ErrorDuplicateDeclaration},
		{"duplicate local", `(func $f (param $a i32) (local $a i32))`, errors.ErrorDuplicateDeclaration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := load(t, tt.src)
			require.NotEmpty(t, diags)
			assert.Contains(t, codes(diags), tt.code)
			assert.True(t, errors.HasErrors(diags))
		})
	}
}

func TestLoadNoMemoryWarning(t *testing.T) {
	_, diags := load(t, `(module
  (func $f (param i32)
    (memory.fill (local.get 0) (i32.const 0) (i32.const 4))))`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.WarningNoMemory, diags[0].Code)
	assert.False(t, errors.HasErrors(diags))

	// bare functions assume a memory is provided elsewhere
	_, diags = load(t, `(func $f (param i32) (memory.fill (local.get 0) (i32.const 0) (i32.const 4)))`)
	assert.Empty(t, diags)
}

func TestLoadSyntaxError(t *testing.T) {
	_, _, err := LoadString("broken.wat", "(func $f")
	assert.Error(t, err)
}

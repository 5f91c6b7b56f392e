package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralAccessors(t *testing.T) {
	assert.Equal(t, int32(-7), LiteralI32(-7).GetI32())
	assert.Equal(t, int64(1)<<40, LiteralI64(1<<40).GetI64())
	assert.Equal(t, float32(1.5), LiteralF32(1.5).GetF32())
	assert.Equal(t, 2.25, LiteralF64(2.25).GetF64())

	assert.Panics(t, func() { LiteralI64(1).GetI32() })
	assert.Panics(t, func() { LiteralF64(1).GetI32() })
}

func TestLiteralEquality(t *testing.T) {
	assert.Equal(t, LiteralI32(4), LiteralI32(4))
	assert.NotEqual(t, LiteralI32(4), LiteralI64(4))
	assert.Equal(t, "-3", LiteralI32(-3).String())
	assert.Equal(t, "0.5", LiteralF64(0.5).String())
}

func TestBinaryOpNames(t *testing.T) {
	for _, op := range []BinaryOp{AddInt32, MulInt32, AddInt64, AddFloat64} {
		parsed, ok := ParseBinaryOp(op.String())
		require.True(t, ok, op.String())
		assert.Equal(t, op, parsed)
	}
	_, ok := ParseBinaryOp("i32.frobnicate")
	assert.False(t, ok)

	assert.Equal(t, I32, AddInt32.Type())
	assert.Equal(t, F64, MulFloat64.Type())
}

func TestExpressionTypes(t *testing.T) {
	b := NewBuilder(nil)

	assert.Equal(t, I32, b.MakeBinary(AddInt32, b.MakeLocalGet(0, I32), b.MakeConst(1)).Type())
	assert.Equal(t, None, b.MakeLocalSet(0, b.MakeConst(1)).Type())
	assert.Equal(t, I32, b.MakeLocalTee(0, b.MakeConst(1), I32).Type())
	assert.Equal(t, None, b.MakeMemoryFill(b.MakeLocalGet(0, I32), b.MakeConst(0), b.MakeConst(4)).Type())
	assert.Equal(t, I64, b.MakeBlock(b.MakeNop(), b.MakeConstLiteral(LiteralI64(3))).Type())
	assert.Equal(t, StoreKind, b.MakeStore(b.MakeLocalGet(0, I32), b.MakeConst(1), I32).Kind())
}

func TestHasSideEffects(t *testing.T) {
	b := NewBuilder(nil)

	assert.False(t, HasSideEffects(b.MakeBinary(AddInt32, b.MakeLocalGet(0, I32), b.MakeConst(1))))
	assert.False(t, HasSideEffects(b.MakeDrop(b.MakeConst(1))))
	assert.True(t, HasSideEffects(b.MakeLoad(4, 0, b.MakeLocalGet(0, I32), I32)))
	assert.True(t, HasSideEffects(b.MakeLocalSet(1, b.MakeConst(1))))
	assert.True(t, HasSideEffects(b.MakeCall("f")))
}

func TestFunctionLocals(t *testing.T) {
	fn := &Function{
		Name:   "f",
		Params: []Type{I32, I64},
		Vars:   []Type{F32},
	}

	assert.Equal(t, 3, fn.NumLocals())
	assert.Equal(t, I32, fn.LocalType(0))
	assert.Equal(t, I64, fn.LocalType(1))
	assert.Equal(t, F32, fn.LocalType(2))
	assert.Equal(t, None, fn.LocalType(3))
	assert.Equal(t, None, fn.LocalType(-1))
	assert.True(t, fn.IsParam(1))
	assert.False(t, fn.IsParam(2))
}

func TestMakeCallResultType(t *testing.T) {
	m := NewModule()
	m.Functions = append(m.Functions, &Function{Name: "g", Results: []Type{F64}})
	b := NewBuilder(m)

	assert.Equal(t, F64, b.MakeCall("g").Type())
	assert.Equal(t, None, b.MakeCall("missing").Type())
}

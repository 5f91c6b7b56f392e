package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter(t *testing.T) {
	printer := NewPrinter()

	assert.NotNil(t, printer)
	assert.Equal(t, 0, printer.indent)
	assert.Equal(t, 0, printer.output.Len())
}

func TestPrintModule(t *testing.T) {
	b := NewBuilder(nil)
	module := &Module{
		Memory: 1,
		Functions: []*Function{
			{
				Name:    "fill",
				Params:  []Type{I32, I32},
				Results: []Type{I32},
				Vars:    []Type{I64},
				Body: b.MakeBlock(
					&Store{Bytes: 1, Offset: 4, Ptr: b.MakeLocalGet(0, I32), Value: b.MakeLocalGet(1, I32), ValueType: I32},
					b.MakeMemoryFill(
						b.MakeBinary(AddInt32, b.MakeLocalGet(0, I32), b.MakeConst(8)),
						b.MakeLocalGet(1, I32),
						b.MakeConst(16),
					),
					b.MakeReturn(b.MakeLocalGet(0, I32)),
				),
			},
		},
	}

	expected := strings.Join([]string{
		"(module",
		"  (memory 1)",
		"  (func $fill (param i32) (param i32) (result i32) (local i64)",
		"    (i32.store8 offset=4 (local.get 0) (local.get 1))",
		"    (memory.fill (i32.add (local.get 0) (i32.const 8)) (local.get 1) (i32.const 16))",
		"    (return (local.get 0))",
		"  )",
		")",
		"",
	}, "\n")
	assert.Equal(t, expected, Print(module))
}

func TestPrintLocalNames(t *testing.T) {
	b := NewBuilder(nil)
	fn := &Function{
		Name:       "named",
		Params:     []Type{I32},
		Vars:       []Type{I32},
		LocalNames: map[int]string{0: "dst", 1: "tmp"},
		Body:       b.MakeBlock(b.MakeLocalSet(1, b.MakeLocalGet(0, I32))),
	}

	output := PrintFunction(fn)
	assert.Contains(t, output, "(param $dst i32)")
	assert.Contains(t, output, "(local $tmp i32)")
	assert.Contains(t, output, "(local.set $tmp (local.get $dst))")
}

func TestPrintStructured(t *testing.T) {
	b := NewBuilder(nil)
	e := &If{
		Condition: b.MakeLocalGet(0, I32),
		IfTrue:    b.MakeBlock(b.MakeNop()),
		IfFalse:   &Loop{Name: "l", Body: b.MakeBlock(b.MakeCall("g"))},
	}

	expected := strings.Join([]string{
		"(if (local.get 0)",
		"  (then",
		"    (block",
		"      (nop)",
		"    )",
		"  )",
		"  (else",
		"    (loop $l",
		"      (block",
		"        (call $g)",
		"      )",
		"    )",
		"  )",
		")",
	}, "\n")
	assert.Equal(t, expected, PrintExpression(e))
}

func TestMnemonics(t *testing.T) {
	assert.Equal(t, "i32.store", StoreMnemonic(I32, 4))
	assert.Equal(t, "i32.store16", StoreMnemonic(I32, 2))
	assert.Equal(t, "i64.store32", StoreMnemonic(I64, 4))
	assert.Equal(t, "f64.store", StoreMnemonic(F64, 8))
	assert.Equal(t, "i32.load8_u", LoadMnemonic(I32, 1))
	assert.Equal(t, "i64.load", LoadMnemonic(I64, 8))
}

package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Type is the value type of an expression or local slot
type Type int

const (
	None Type = iota
	I32
	I64
	F32
	F64
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Size returns the width of the type in bytes, 0 for None
func (t Type) Size() int {
	switch t {
	case I32, F32:
		return 4
	case I64, F64:
		return 8
	default:
		return 0
	}
}

// ParseType maps a text type name to a Type
func ParseType(name string) (Type, bool) {
	switch name {
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	}
	return None, false
}

// Literal is a typed compile-time scalar. Floats are kept as raw bits so
// that equality is bitwise.
type Literal struct {
	Type Type
	bits uint64
}

func LiteralI32(v int32) Literal   { return Literal{Type: I32, bits: uint64(uint32(v))} }
func LiteralI64(v int64) Literal   { return Literal{Type: I64, bits: uint64(v)} }
func LiteralF32(v float32) Literal { return Literal{Type: F32, bits: uint64(math.Float32bits(v))} }
func LiteralF64(v float64) Literal { return Literal{Type: F64, bits: math.Float64bits(v)} }

// GetI32 returns the value of an i32 literal. It panics on any other type.
func (l Literal) GetI32() int32 {
	if l.Type != I32 {
		panic("ir: GetI32 on " + l.Type.String() + " literal")
	}
	return int32(uint32(l.bits))
}

// GetI64 returns the value of an i64 literal. It panics on any other type.
func (l Literal) GetI64() int64 {
	if l.Type != I64 {
		panic("ir: GetI64 on " + l.Type.String() + " literal")
	}
	return int64(l.bits)
}

func (l Literal) GetF32() float32 {
	if l.Type != F32 {
		panic("ir: GetF32 on " + l.Type.String() + " literal")
	}
	return math.Float32frombits(uint32(l.bits))
}

func (l Literal) GetF64() float64 {
	if l.Type != F64 {
		panic("ir: GetF64 on " + l.Type.String() + " literal")
	}
	return math.Float64frombits(l.bits)
}

func (l Literal) String() string {
	switch l.Type {
	case I32:
		return strconv.FormatInt(int64(l.GetI32()), 10)
	case I64:
		return strconv.FormatInt(l.GetI64(), 10)
	case F32:
		return strconv.FormatFloat(float64(l.GetF32()), 'g', -1, 32)
	case F64:
		return strconv.FormatFloat(l.GetF64(), 'g', -1, 64)
	default:
		return "?"
	}
}

// BinaryOp identifies a two-operand arithmetic instruction
type BinaryOp int

const (
	AddInt32 BinaryOp = iota
	SubInt32
	MulInt32
	AndInt32
	OrInt32
	XorInt32
	ShlInt32
	AddInt64
	SubInt64
	MulInt64
	AddFloat32
	AddFloat64
	MulFloat64
)

var binaryOpInfo = [...]struct {
	name string
	typ  Type
}{
	AddInt32:   {"i32.add", I32},
	SubInt32:   {"i32.sub", I32},
	MulInt32:   {"i32.mul", I32},
	AndInt32:   {"i32.and", I32},
	OrInt32:    {"i32.or", I32},
	XorInt32:   {"i32.xor", I32},
	ShlInt32:   {"i32.shl", I32},
	AddInt64:   {"i64.add", I64},
	SubInt64:   {"i64.sub", I64},
	MulInt64:   {"i64.mul", I64},
	AddFloat32: {"f32.add", F32},
	AddFloat64: {"f64.add", F64},
	MulFloat64: {"f64.mul", F64},
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpInfo) {
		return binaryOpInfo[op].name
	}
	return fmt.Sprintf("binary(%d)", int(op))
}

// Type returns the operand and result type of the operation
func (op BinaryOp) Type() Type {
	if int(op) < len(binaryOpInfo) {
		return binaryOpInfo[op].typ
	}
	return None
}

// ParseBinaryOp maps a text mnemonic such as "i32.add" to its BinaryOp
func ParseBinaryOp(name string) (BinaryOp, bool) {
	for op, info := range binaryOpInfo {
		if info.name == name {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

package passes

import (
	"github.com/torokati44/binaryen/internal/ir"
)

// ConstantFolding evaluates integer arithmetic on two constants at compile
// time. Folding local + (c1 + c2) style addresses leaves the local + const
// shape that the bulk memory pass recognizes.
type ConstantFolding struct{}

func (cf *ConstantFolding) Name() string {
	return "const-fold"
}

func (cf *ConstantFolding) Description() string {
	return "Evaluates constant expressions at compile time and replaces with literals"
}

func (cf *ConstantFolding) Apply(module *ir.Module) bool {
	changed := false

	for _, fn := range module.Functions {
		if cf.foldConstants(module, fn) {
			changed = true
		}
	}

	return changed
}

// foldConstants performs constant folding within a function
func (cf *ConstantFolding) foldConstants(module *ir.Module, fn *ir.Function) bool {
	builder := ir.NewBuilder(module)
	changed := false

	ir.PostWalkFunction(fn, func(e ir.Expression) ir.Expression {
		bin, ok := e.(*ir.Binary)
		if !ok {
			return nil
		}
		left, leftOk := bin.Left.(*ir.Const)
		right, rightOk := bin.Right.(*ir.Const)
		if !leftOk || !rightOk {
			return nil
		}
		if result, ok := cf.computeBinaryOp(bin.Op, left.Value, right.Value); ok {
			changed = true
			return builder.MakeConstLiteral(result)
		}
		return nil
	})

	return changed
}

// computeBinaryOp evaluates op with wrapping integer semantics
func (cf *ConstantFolding) computeBinaryOp(op ir.BinaryOp, left, right ir.Literal) (ir.Literal, bool) {
	if left.Type != op.Type() || right.Type != op.Type() {
		return ir.Literal{}, false
	}

	switch op.Type() {
	case ir.I32:
		a, b := left.GetI32(), right.GetI32()
		switch op {
		case ir.AddInt32:
			return ir.LiteralI32(a + b), true
		case ir.SubInt32:
			return ir.LiteralI32(a - b), true
		case ir.MulInt32:
			return ir.LiteralI32(a * b), true
		case ir.AndInt32:
			return ir.LiteralI32(a & b), true
		case ir.OrInt32:
			return ir.LiteralI32(a | b), true
		case ir.XorInt32:
			return ir.LiteralI32(a ^ b), true
		case ir.ShlInt32:
			return ir.LiteralI32(a << (uint32(b) & 31)), true
		}
	case ir.I64:
		a, b := left.GetI64(), right.GetI64()
		switch op {
		case ir.AddInt64:
			return ir.LiteralI64(a + b), true
		case ir.SubInt64:
			return ir.LiteralI64(a - b), true
		case ir.MulInt64:
			return ir.LiteralI64(a * b), true
		}
	}

	// Floats are left alone
	return ir.Literal{}, false
}

package wat

import (
	"strconv"
	"strings"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/ir"
)

// expr lowers one instruction form. Malformed forms are reported and
// replaced by a nop so the rest of the body can still be checked.
func (l *Loader) expr(s *grammar.SExpr) ir.Expression {
	if e := l.lowerExpr(s); e != nil {
		return e
	}
	return l.builder.MakeNop()
}

func (l *Loader) lowerExpr(s *grammar.SExpr) ir.Expression {
	if ty, ok := consts[s.Head]; ok {
		if !l.arity(s, 1) {
			return nil
		}
		value, ok := l.literal(ty, s.Args[0])
		if !ok {
			return nil
		}
		return l.builder.MakeConstLiteral(value)
	}
	if op, ok := ir.ParseBinaryOp(s.Head); ok {
		return l.binary(s, op)
	}
	if access, ok := loads[s.Head]; ok {
		return l.load(s, access)
	}
	if access, ok := stores[s.Head]; ok {
		return l.store(s, access)
	}

	switch s.Head {
	case "nop":
		if !l.arity(s, 0) {
			return nil
		}
		return l.builder.MakeNop()
	case "block":
		name, ty, rest := l.blockHeader(s.Args)
		return &ir.Block{Name: name, List: l.operands(s, rest), Ty: ty}
	case "loop":
		name, _, rest := l.blockHeader(s.Args)
		body := l.builder.MakeBlock(l.operands(s, rest)...)
		return &ir.Loop{Name: name, Body: body}
	case "if":
		return l.ifExpr(s)
	case "local.get":
		if !l.arity(s, 1) {
			return nil
		}
		index, ok := l.localIndex(s.Args[0])
		if !ok {
			return nil
		}
		return l.builder.MakeLocalGet(index, l.fn.LocalType(index))
	case "local.set", "local.tee":
		if !l.arity(s, 2) {
			return nil
		}
		index, ok := l.localIndex(s.Args[0])
		if !ok {
			return nil
		}
		value := l.operands(s, s.Args[1:])[0]
		l.expectType(s, value, l.fn.LocalType(index))
		if s.Head == "local.tee" {
			return l.builder.MakeLocalTee(index, value, l.fn.LocalType(index))
		}
		return l.builder.MakeLocalSet(index, value)
	case "memory.fill", "memory.copy":
		if !l.arity(s, 3) {
			return nil
		}
		l.checkMemory(s)
		ops := l.operands(s, s.Args)
		for _, op := range ops {
			l.expectType(s, op, ir.I32)
		}
		if s.Head == "memory.fill" {
			return l.builder.MakeMemoryFill(ops[0], ops[1], ops[2])
		}
		return l.builder.MakeMemoryCopy(ops[0], ops[1], ops[2])
	case "drop":
		if !l.arity(s, 1) {
			return nil
		}
		return l.builder.MakeDrop(l.operands(s, s.Args)[0])
	case "return":
		if len(s.Args) > 1 {
			l.errorf(errors.WrongArity(s.Head, 1, len(s.Args), position(s)))
			return nil
		}
		if len(s.Args) == 0 {
			return l.builder.MakeReturn(nil)
		}
		return l.builder.MakeReturn(l.operands(s, s.Args)[0])
	case "call":
		return l.call(s)
	}

	l.errorf(errors.UnknownInstruction(s.Head, position(s), KnownInstructions()))
	return nil
}

func (l *Loader) arity(s *grammar.SExpr, n int) bool {
	if len(s.Args) != n {
		l.errorf(errors.WrongArity(s.Head, n, len(s.Args), position(s)))
		return false
	}
	return true
}

// operands lowers nested forms; bare atoms in operand position are errors
func (l *Loader) operands(s *grammar.SExpr, args []*grammar.Atom) []ir.Expression {
	ops := make([]ir.Expression, 0, len(args))
	for _, arg := range args {
		if arg.List == nil {
			l.errorf(errors.UnknownInstruction(arg.Text(), atomPosition(arg), nil))
			ops = append(ops, l.builder.MakeNop())
			continue
		}
		ops = append(ops, l.expr(arg.List))
	}
	return ops
}

// expectType reports a mismatch when e has a known type different from want
func (l *Loader) expectType(s *grammar.SExpr, e ir.Expression, want ir.Type) {
	if e.Kind() == ir.NopKind {
		return
	}
	if got := e.Type(); got != want {
		l.errorf(errors.TypeMismatch(s.Head, want.String(), describe(e), position(s)))
	}
}

func (l *Loader) binary(s *grammar.SExpr, op ir.BinaryOp) ir.Expression {
	if !l.arity(s, 2) {
		return nil
	}
	ops := l.operands(s, s.Args)
	for _, operand := range ops {
		l.expectType(s, operand, op.Type())
	}
	return l.builder.MakeBinary(op, ops[0], ops[1])
}

// memarg consumes leading offset=/align= immediates
func (l *Loader) memarg(args []*grammar.Atom) (uint32, []*grammar.Atom) {
	var offset uint32
	for len(args) > 0 && args[0].Keyword != nil {
		text := *args[0].Keyword
		key, value, found := strings.Cut(text, "=")
		if !found || (key != "offset" && key != "align") {
			break
		}
		n, ok := parseInteger(value, 32)
		if !ok || n < 0 {
			l.errorf(errors.InvalidMemarg(text, atomPosition(args[0])))
		} else if key == "offset" {
			offset = uint32(n)
		}
		args = args[1:]
	}
	return offset, args
}

func (l *Loader) load(s *grammar.SExpr, access memoryAccess) ir.Expression {
	offset, rest := l.memarg(s.Args)
	if len(rest) != 1 {
		l.errorf(errors.WrongArity(s.Head, 1, len(rest), position(s)))
		return nil
	}
	l.checkMemory(s)
	ptr := l.operands(s, rest)[0]
	l.expectType(s, ptr, ir.I32)
	return l.builder.MakeLoad(access.bytes, offset, ptr, access.ty)
}

func (l *Loader) store(s *grammar.SExpr, access memoryAccess) ir.Expression {
	offset, rest := l.memarg(s.Args)
	if len(rest) != 2 {
		l.errorf(errors.WrongArity(s.Head, 2, len(rest), position(s)))
		return nil
	}
	l.checkMemory(s)
	ops := l.operands(s, rest)
	l.expectType(s, ops[0], ir.I32)
	l.expectType(s, ops[1], access.ty)
	return &ir.Store{
		Bytes:     access.bytes,
		Offset:    offset,
		Ptr:       ops[0],
		Value:     ops[1],
		ValueType: access.ty,
	}
}

// blockHeader reads an optional $label and (result ty) from the front of args
func (l *Loader) blockHeader(args []*grammar.Atom) (string, ir.Type, []*grammar.Atom) {
	var name string
	ty := ir.None
	if len(args) > 0 && args[0].Ident != nil {
		name = strings.TrimPrefix(*args[0].Ident, "$")
		args = args[1:]
	}
	if len(args) > 0 && args[0].List != nil && args[0].List.Head == "result" {
		if types := l.types(args[0].List); len(types) > 0 {
			ty = types[0]
		}
		args = args[1:]
	}
	return name, ty, args
}

func (l *Loader) ifExpr(s *grammar.SExpr) ir.Expression {
	if len(s.Args) < 2 || len(s.Args) > 3 {
		l.errorf(errors.WrongArity(s.Head, 3, len(s.Args), position(s)))
		return nil
	}
	cond := l.operands(s, s.Args[:1])[0]
	l.expectType(s, cond, ir.I32)

	arm := func(arg *grammar.Atom, keyword string) ir.Expression {
		if arg.List == nil || arg.List.Head != keyword {
			l.errorf(errors.UnknownInstruction(arg.String(), atomPosition(arg), []string{keyword}))
			return l.builder.MakeNop()
		}
		return l.builder.MakeBlock(l.operands(arg.List, arg.List.Args)...)
	}

	e := &ir.If{Condition: cond, IfTrue: arm(s.Args[1], "then")}
	if len(s.Args) == 3 {
		e.IfFalse = arm(s.Args[2], "else")
	}
	return e
}

func (l *Loader) call(s *grammar.SExpr) ir.Expression {
	if len(s.Args) == 0 || s.Args[0].Ident == nil {
		l.errorf(errors.WrongArity(s.Head, 1, len(s.Args), position(s)))
		return nil
	}
	target := strings.TrimPrefix(*s.Args[0].Ident, "$")
	sig, ok := l.signatures[target]
	if !ok {
		defined := make([]string, 0, len(l.signatures))
		for name := range l.signatures {
			defined = append(defined, name)
		}
		l.errorf(errors.UnknownFunction(target, atomPosition(s.Args[0]), defined))
		return nil
	}

	operands := l.operands(s, s.Args[1:])
	if len(operands) != len(sig.params) {
		l.errorf(errors.WrongArity(s.Head+" $"+target, len(sig.params), len(operands), position(s)))
		return nil
	}
	for i, op := range operands {
		l.expectType(s, op, sig.params[i])
	}

	call := &ir.Call{Target: target, Operands: operands}
	if len(sig.results) > 0 {
		call.Ty = sig.results[0]
	}
	return call
}

// localIndex resolves a numeric index or $name against the current function
func (l *Loader) localIndex(arg *grammar.Atom) (int, bool) {
	var ref string
	index := -1

	switch {
	case arg.Number != nil:
		ref = *arg.Number
		if n, err := strconv.Atoi(ref); err == nil {
			index = n
		}
	case arg.Ident != nil:
		ref = *arg.Ident
		if n, ok := l.locals[strings.TrimPrefix(ref, "$")]; ok {
			index = n
		}
	default:
		ref = arg.String()
	}

	if index < 0 || index >= l.fn.NumLocals() {
		declared := make([]string, 0, len(l.locals))
		for name := range l.locals {
			declared = append(declared, "$"+name)
		}
		l.errorf(errors.UnknownLocal(ref, l.fn.Name, atomPosition(arg), declared))
		return 0, false
	}
	return index, true
}

func (l *Loader) checkMemory(s *grammar.SExpr) {
	if l.explicitModule && l.module.Memory < 0 {
		l.errorf(errors.NoMemory(s.Head, position(s)))
	}
}

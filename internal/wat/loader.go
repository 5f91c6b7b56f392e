// Package wat lowers the S-expression text form parsed by the grammar
// package into IR modules.
package wat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/ir"
)

type memoryAccess struct {
	ty    ir.Type
	bytes int
}

var loads = map[string]memoryAccess{
	"i32.load":     {ir.I32, 4},
	"i32.load8_u":  {ir.I32, 1},
	"i32.load16_u": {ir.I32, 2},
	"i64.load":     {ir.I64, 8},
	"i64.load8_u":  {ir.I64, 1},
	"i64.load16_u": {ir.I64, 2},
	"i64.load32_u": {ir.I64, 4},
	"f32.load":     {ir.F32, 4},
	"f64.load":     {ir.F64, 8},
}

var stores = map[string]memoryAccess{
	"i32.store":   {ir.I32, 4},
	"i32.store8":  {ir.I32, 1},
	"i32.store16": {ir.I32, 2},
	"i64.store":   {ir.I64, 8},
	"i64.store8":  {ir.I64, 1},
	"i64.store16": {ir.I64, 2},
	"i64.store32": {ir.I64, 4},
	"f32.store":   {ir.F32, 4},
	"f64.store":   {ir.F64, 8},
}

var consts = map[string]ir.Type{
	"i32.const": ir.I32,
	"i64.const": ir.I64,
	"f32.const": ir.F32,
	"f64.const": ir.F64,
}

var plain = []string{
	"nop", "block", "loop", "if", "local.get", "local.set", "local.tee",
	"memory.fill", "memory.copy", "drop", "return", "call",
}

// KnownInstructions lists every opcode for "did you mean" suggestions
func KnownInstructions() []string {
	names := append([]string(nil), plain...)
	for name := range loads {
		names = append(names, name)
	}
	for name := range stores {
		names = append(names, name)
	}
	for name := range consts {
		names = append(names, name)
	}
	for op := ir.AddInt32; op <= ir.MulFloat64; op++ {
		names = append(names, op.String())
	}
	sort.Strings(names)
	return names
}

type signature struct {
	params     []ir.Type
	paramNames []string
	results    []ir.Type
}

// Loader converts a parsed text file into an ir.Module
type Loader struct {
	module     *ir.Module
	builder    *ir.Builder
	errs       []errors.CompilerError
	signatures map[string]signature

	// state of the function being lowered
	fn     *ir.Function
	locals map[string]int

	explicitModule bool
}

// NewLoader creates a loader with an empty module
func NewLoader() *Loader {
	module := ir.NewModule()
	return &Loader{
		module:     module,
		builder:    ir.NewBuilder(module),
		signatures: make(map[string]signature),
	}
}

// Load lowers file. Diagnostics are returned in source order; the module is
// only meaningful when none of them is an error.
func Load(file *grammar.File) (*ir.Module, []errors.CompilerError) {
	l := NewLoader()
	l.lowerFile(file)
	return l.module, l.errs
}

// LoadString parses and lowers source. A syntax error is returned as err.
func LoadString(filename, source string) (*ir.Module, []errors.CompilerError, error) {
	file, err := grammar.ParseString(filename, source)
	if err != nil {
		return nil, nil, err
	}
	module, diags := Load(file)
	return module, diags, nil
}

// LoadFile reads, parses and lowers the file at path
func LoadFile(path string) (*ir.Module, []errors.CompilerError, error) {
	file, err := grammar.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	module, diags := Load(file)
	return module, diags, nil
}

func (l *Loader) lowerFile(file *grammar.File) {
	var funcs []*grammar.SExpr

	for _, form := range file.Exprs {
		switch form.Head {
		case "module":
			l.explicitModule = true
			funcs = append(funcs, l.moduleFields(form)...)
		case "func":
			funcs = append(funcs, form)
		default:
			l.errorf(errors.UnexpectedForm(form.Head, position(form)))
		}
	}

	// Signatures first so calls can be resolved in any order
	names := make([]string, len(funcs))
	for i, form := range funcs {
		names[i] = l.declareFunction(form, i)
	}
	for i, form := range funcs {
		if names[i] != "" {
			l.lowerFunction(form, names[i])
		}
	}
}

func (l *Loader) moduleFields(form *grammar.SExpr) []*grammar.SExpr {
	var funcs []*grammar.SExpr
	for _, arg := range form.Args {
		field := arg.List
		if field == nil {
			l.errorf(errors.UnexpectedForm(arg.Text(), atomPosition(arg)))
			continue
		}
		switch field.Head {
		case "memory":
			if len(field.Args) != 1 || field.Args[0].Number == nil {
				l.errorf(errors.WrongArity("memory", 1, len(field.Args), position(field)))
				continue
			}
			pages, err := strconv.Atoi(*field.Args[0].Number)
			if err != nil || pages < 0 {
				l.errorf(errors.InvalidLiteral(*field.Args[0].Number, "page count", atomPosition(field.Args[0])))
				continue
			}
			l.module.Memory = pages
		case "func":
			funcs = append(funcs, field)
		default:
			l.errorf(errors.UnknownInstruction(field.Head, position(field), []string{"memory", "func"}))
		}
	}
	return funcs
}

// declareFunction records the name and signature of form and returns the
// name, or "" when it clashes with an earlier function
func (l *Loader) declareFunction(form *grammar.SExpr, index int) string {
	name := strconv.Itoa(index)
	if len(form.Args) > 0 && form.Args[0].Ident != nil {
		name = strings.TrimPrefix(*form.Args[0].Ident, "$")
	}
	if _, exists := l.signatures[name]; exists {
		l.errorf(errors.DuplicateDeclaration(name, position(form)))
		return ""
	}

	var sig signature
	for _, arg := range form.Args {
		if arg.List == nil {
			continue
		}
		switch arg.List.Head {
		case "param":
			for _, decl := range l.declarations(arg.List) {
				sig.params = append(sig.params, decl.ty)
				sig.paramNames = append(sig.paramNames, decl.name)
			}
		case "result":
			sig.results = append(sig.results, l.types(arg.List)...)
		}
	}
	l.signatures[name] = sig
	return name
}

type declaration struct {
	name string
	ty   ir.Type
}

// declarations reads (param $n ty), (param ty ty ...) and the local equivalents
func (l *Loader) declarations(form *grammar.SExpr) []declaration {
	if len(form.Args) == 2 && form.Args[0].Ident != nil {
		ty, ok := l.valueType(form.Args[1])
		if !ok {
			return nil
		}
		return []declaration{{name: strings.TrimPrefix(*form.Args[0].Ident, "$"), ty: ty}}
	}
	var decls []declaration
	for _, ty := range l.types(form) {
		decls = append(decls, declaration{ty: ty})
	}
	return decls
}

func (l *Loader) types(form *grammar.SExpr) []ir.Type {
	var types []ir.Type
	for _, arg := range form.Args {
		if ty, ok := l.valueType(arg); ok {
			types = append(types, ty)
		}
	}
	return types
}

func (l *Loader) valueType(arg *grammar.Atom) (ir.Type, bool) {
	if arg.Keyword != nil {
		if ty, ok := ir.ParseType(*arg.Keyword); ok {
			return ty, true
		}
	}
	l.errorf(errors.UnknownType(arg.String(), atomPosition(arg)))
	return ir.None, false
}

func (l *Loader) lowerFunction(form *grammar.SExpr, name string) {
	sig := l.signatures[name]
	l.fn = &ir.Function{
		Name:    name,
		Params:  sig.params,
		Results: sig.results,
	}
	l.locals = make(map[string]int)
	defer func() { l.fn, l.locals = nil, nil }()

	for i, name := range sig.paramNames {
		l.nameLocal(name, i, form)
	}

	var body []ir.Expression
	index := len(sig.params)
	for _, arg := range form.Args {
		if arg.Ident != nil && arg == form.Args[0] {
			continue
		}
		if arg.List == nil {
			l.errorf(errors.UnknownInstruction(arg.Text(), atomPosition(arg), nil))
			continue
		}
		switch arg.List.Head {
		case "local":
			for _, decl := range l.declarations(arg.List) {
				l.fn.Vars = append(l.fn.Vars, decl.ty)
				l.nameLocal(decl.name, index, arg.List)
				index++
			}
		case "param", "result":
		default:
			body = append(body, l.expr(arg.List))
		}
	}

	block := l.builder.MakeBlock(body...)
	block.Ty = l.fn.ResultType()
	l.fn.Body = block
	l.module.Functions = append(l.module.Functions, l.fn)
}

func (l *Loader) nameLocal(name string, index int, form *grammar.SExpr) {
	if name == "" {
		return
	}
	if _, exists := l.locals[name]; exists {
		l.errorf(errors.DuplicateDeclaration(name, position(form)))
		return
	}
	l.locals[name] = index
	if l.fn.LocalNames == nil {
		l.fn.LocalNames = make(map[int]string)
	}
	l.fn.LocalNames[index] = name
}

func (l *Loader) errorf(err errors.CompilerError) {
	l.errs = append(l.errs, err)
}

func position(s *grammar.SExpr) errors.Position {
	return errors.Position{Filename: s.Pos.Filename, Line: s.Pos.Line, Column: s.Pos.Column}
}

func atomPosition(a *grammar.Atom) errors.Position {
	return errors.Position{Filename: a.Pos.Filename, Line: a.Pos.Line, Column: a.Pos.Column}
}

// parseInteger parses a decimal or 0x-prefixed literal that fits in bits,
// accepting both the signed and the unsigned range
func parseInteger(text string, bits int) (int64, bool) {
	negative := strings.HasPrefix(text, "-")
	digits := strings.TrimLeft(text, "+-")
	base := 10
	if strings.HasPrefix(digits, "0x") {
		base = 16
		digits = digits[2:]
	}

	u, err := strconv.ParseUint(digits, base, bits)
	if err != nil {
		return 0, false
	}
	if negative {
		if u > 1<<(bits-1) {
			return 0, false
		}
		return -int64(u), true
	}
	return int64(u), true
}

func (l *Loader) literal(ty ir.Type, arg *grammar.Atom) (ir.Literal, bool) {
	if arg.Number == nil {
		l.errorf(errors.InvalidLiteral(arg.String(), ty.String(), atomPosition(arg)))
		return ir.Literal{}, false
	}
	text := *arg.Number

	switch ty {
	case ir.I32:
		if v, ok := parseInteger(text, 32); ok {
			return ir.LiteralI32(int32(v)), true
		}
	case ir.I64:
		if v, ok := parseInteger(text, 64); ok {
			return ir.LiteralI64(v), true
		}
	case ir.F32:
		if v, err := strconv.ParseFloat(text, 32); err == nil {
			return ir.LiteralF32(float32(v)), true
		}
	case ir.F64:
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return ir.LiteralF64(v), true
		}
	}
	l.errorf(errors.InvalidLiteral(text, ty.String(), atomPosition(arg)))
	return ir.Literal{}, false
}

func describe(e ir.Expression) string {
	return fmt.Sprintf("%s (%s)", e.Kind(), e.Type())
}

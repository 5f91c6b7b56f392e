package ir

import (
	"fmt"
	"strings"
)

// Printer renders IR in the S-expression text form accepted by the grammar package
type Printer struct {
	indent int
	output strings.Builder
	fn     *Function
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the text form of a module
func Print(module *Module) string {
	p := NewPrinter()
	p.printModule(module)
	return p.output.String()
}

// PrintFunction returns the text form of a single function
func PrintFunction(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

// PrintExpression returns the text form of an expression tree
func PrintExpression(e Expression) string {
	p := NewPrinter()
	p.printExpression(e)
	return strings.TrimSuffix(p.output.String(), "\n")
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printModule(module *Module) {
	p.writeLine("(module")
	p.indent++
	if module.Memory >= 0 {
		p.writeLine("(memory %d)", module.Memory)
	}
	for _, fn := range module.Functions {
		p.printFunction(fn)
	}
	p.indent--
	p.writeLine(")")
}

func (p *Printer) printFunction(fn *Function) {
	p.fn = fn
	defer func() { p.fn = nil }()

	header := []string{"func", "$" + fn.Name}
	for i, ty := range fn.Params {
		header = append(header, p.declaration("param", i, ty))
	}
	for _, ty := range fn.Results {
		header = append(header, fmt.Sprintf("(result %s)", ty))
	}
	for i, ty := range fn.Vars {
		header = append(header, p.declaration("local", len(fn.Params)+i, ty))
	}

	p.writeLine("(%s", strings.Join(header, " "))
	p.indent++
	if body, ok := fn.Body.(*Block); ok && body.Name == "" {
		for _, child := range body.List {
			p.printExpression(child)
		}
	} else if fn.Body != nil {
		p.printExpression(fn.Body)
	}
	p.indent--
	p.writeLine(")")
}

func (p *Printer) declaration(keyword string, index int, ty Type) string {
	if name := p.localName(index); name != "" {
		return fmt.Sprintf("(%s $%s %s)", keyword, name, ty)
	}
	return fmt.Sprintf("(%s %s)", keyword, ty)
}

func (p *Printer) localName(index int) string {
	if p.fn == nil || p.fn.LocalNames == nil {
		return ""
	}
	return p.fn.LocalNames[index]
}

func (p *Printer) localRef(index int) string {
	if name := p.localName(index); name != "" {
		return "$" + name
	}
	return fmt.Sprintf("%d", index)
}

// printExpression writes e as one or more indented lines. Trees without
// structured control flow go on a single line.
func (p *Printer) printExpression(e Expression) {
	switch n := e.(type) {
	case *Block:
		p.writeLine("(%s", strings.Join(p.blockHeader("block", n.Name, n.Ty), " "))
		p.indent++
		for _, child := range n.List {
			p.printExpression(child)
		}
		p.indent--
		p.writeLine(")")
	case *Loop:
		p.writeLine("(%s", strings.Join(p.blockHeader("loop", n.Name, None), " "))
		p.indent++
		p.printExpression(n.Body)
		p.indent--
		p.writeLine(")")
	case *If:
		p.writeLine("(if %s", p.inline(n.Condition))
		p.indent++
		p.writeLine("(then")
		p.indent++
		p.printExpression(n.IfTrue)
		p.indent--
		p.writeLine(")")
		if n.IfFalse != nil {
			p.writeLine("(else")
			p.indent++
			p.printExpression(n.IfFalse)
			p.indent--
			p.writeLine(")")
		}
		p.indent--
		p.writeLine(")")
	default:
		if e == nil {
			return
		}
		p.writeLine("%s", p.inline(e))
	}
}

func (p *Printer) blockHeader(keyword, name string, ty Type) []string {
	header := []string{keyword}
	if name != "" {
		header = append(header, "$"+name)
	}
	if ty != None {
		header = append(header, fmt.Sprintf("(result %s)", ty))
	}
	return header
}

// inline renders e on one line. Structured nodes nested inside simple ones
// are flattened as well.
func (p *Printer) inline(e Expression) string {
	switch n := e.(type) {
	case *Nop:
		return "(nop)"
	case *LocalGet:
		return fmt.Sprintf("(local.get %s)", p.localRef(n.Index))
	case *LocalSet:
		op := "local.set"
		if n.Tee {
			op = "local.tee"
		}
		return fmt.Sprintf("(%s %s %s)", op, p.localRef(n.Index), p.inline(n.Value))
	case *Const:
		return fmt.Sprintf("(%s.const %s)", n.Value.Type, n.Value)
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", n.Op, p.inline(n.Left), p.inline(n.Right))
	case *Load:
		return fmt.Sprintf("(%s%s %s)", LoadMnemonic(n.Ty, n.Bytes), offsetImmediate(n.Offset), p.inline(n.Ptr))
	case *Store:
		return fmt.Sprintf("(%s%s %s %s)", StoreMnemonic(n.ValueType, n.Bytes), offsetImmediate(n.Offset),
			p.inline(n.Ptr), p.inline(n.Value))
	case *MemoryFill:
		return fmt.Sprintf("(memory.fill %s %s %s)", p.inline(n.Dest), p.inline(n.Value), p.inline(n.Size))
	case *MemoryCopy:
		return fmt.Sprintf("(memory.copy %s %s %s)", p.inline(n.Dest), p.inline(n.Source), p.inline(n.Size))
	case *Drop:
		return fmt.Sprintf("(drop %s)", p.inline(n.Value))
	case *Return:
		if n.Value == nil {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", p.inline(n.Value))
	case *Call:
		parts := []string{"call", "$" + n.Target}
		for _, op := range n.Operands {
			parts = append(parts, p.inline(op))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *Block:
		parts := p.blockHeader("block", n.Name, n.Ty)
		for _, child := range n.List {
			parts = append(parts, p.inline(child))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *Loop:
		parts := p.blockHeader("loop", n.Name, None)
		return "(" + strings.Join(append(parts, p.inline(n.Body)), " ") + ")"
	case *If:
		s := fmt.Sprintf("(if %s (then %s)", p.inline(n.Condition), p.inline(n.IfTrue))
		if n.IfFalse != nil {
			s += fmt.Sprintf(" (else %s)", p.inline(n.IfFalse))
		}
		return s + ")"
	default:
		return "(unknown)"
	}
}

func offsetImmediate(offset uint32) string {
	if offset == 0 {
		return ""
	}
	return fmt.Sprintf(" offset=%d", offset)
}

// StoreMnemonic returns the text opcode for a store of bytes bytes of a ty value
func StoreMnemonic(ty Type, bytes int) string {
	if bytes == ty.Size() || bytes == 0 {
		return ty.String() + ".store"
	}
	return fmt.Sprintf("%s.store%d", ty, bytes*8)
}

// LoadMnemonic returns the text opcode for a zero-extending load
func LoadMnemonic(ty Type, bytes int) string {
	if bytes == ty.Size() || bytes == 0 {
		return ty.String() + ".load"
	}
	return fmt.Sprintf("%s.load%d_u", ty, bytes*8)
}

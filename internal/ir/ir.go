package ir

// Expression trees for function bodies. The set of node kinds is closed:
// every node type in this file implements Expression and nothing outside the
// package can add a new one. Passes switch on the concrete type and treat
// anything they do not recognise as opaque.

// ExpressionKind tags the concrete node type of an Expression
type ExpressionKind int

const (
	NopKind ExpressionKind = iota
	BlockKind
	LoopKind
	IfKind
	LocalGetKind
	LocalSetKind
	ConstKind
	BinaryKind
	LoadKind
	StoreKind
	MemoryFillKind
	MemoryCopyKind
	DropKind
	ReturnKind
	CallKind
)

var kindNames = [...]string{
	NopKind:        "nop",
	BlockKind:      "block",
	LoopKind:       "loop",
	IfKind:         "if",
	LocalGetKind:   "local.get",
	LocalSetKind:   "local.set",
	ConstKind:      "const",
	BinaryKind:     "binary",
	LoadKind:       "load",
	StoreKind:      "store",
	MemoryFillKind: "memory.fill",
	MemoryCopyKind: "memory.copy",
	DropKind:       "drop",
	ReturnKind:     "return",
	CallKind:       "call",
}

func (k ExpressionKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Expression is a node of a function body
type Expression interface {
	Kind() ExpressionKind
	Type() Type
	expression()
}

// Nop does nothing
type Nop struct{}

// Block is a structural block. List is owned by the block and is the only
// sequence passes are allowed to edit in place.
type Block struct {
	Name string
	List []Expression
	Ty   Type
}

// Loop repeats Body while branches target Name
type Loop struct {
	Name string
	Body Expression
}

// If evaluates IfTrue when Condition is non-zero, otherwise IfFalse (which may be nil)
type If struct {
	Condition Expression
	IfTrue    Expression
	IfFalse   Expression
}

// LocalGet reads a numbered local slot
type LocalGet struct {
	Index int
	Ty    Type
}

// LocalSet writes a local slot. With Tee set it also yields the value.
type LocalSet struct {
	Index int
	Value Expression
	Tee   bool
	Ty    Type
}

// Const is a compile-time scalar
type Const struct {
	Value Literal
}

// Binary applies Op to Left and Right
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

// Load reads Bytes bytes from Ptr+Offset
type Load struct {
	Bytes  int
	Offset uint32
	Ptr    Expression
	Ty     Type
}

// Store writes the low Bytes bytes of Value to Ptr+Offset
type Store struct {
	Bytes     int
	Offset    uint32
	Ptr       Expression
	Value     Expression
	ValueType Type
}

// MemoryFill writes the low byte of Value to Size bytes starting at Dest
type MemoryFill struct {
	Dest  Expression
	Value Expression
	Size  Expression
}

// MemoryCopy copies Size bytes from Source to Dest
type MemoryCopy struct {
	Dest   Expression
	Source Expression
	Size   Expression
}

// Drop evaluates Value and discards it
type Drop struct {
	Value Expression
}

// Return leaves the function, optionally with Value
type Return struct {
	Value Expression
}

// Call invokes the function named Target
type Call struct {
	Target   string
	Operands []Expression
	Ty       Type
}

func (*Nop) Kind() ExpressionKind        { return NopKind }
func (*Block) Kind() ExpressionKind      { return BlockKind }
func (*Loop) Kind() ExpressionKind       { return LoopKind }
func (*If) Kind() ExpressionKind         { return IfKind }
func (*LocalGet) Kind() ExpressionKind   { return LocalGetKind }
func (*LocalSet) Kind() ExpressionKind   { return LocalSetKind }
func (*Const) Kind() ExpressionKind      { return ConstKind }
func (*Binary) Kind() ExpressionKind     { return BinaryKind }
func (*Load) Kind() ExpressionKind       { return LoadKind }
func (*Store) Kind() ExpressionKind      { return StoreKind }
func (*MemoryFill) Kind() ExpressionKind { return MemoryFillKind }
func (*MemoryCopy) Kind() ExpressionKind { return MemoryCopyKind }
func (*Drop) Kind() ExpressionKind       { return DropKind }
func (*Return) Kind() ExpressionKind     { return ReturnKind }
func (*Call) Kind() ExpressionKind       { return CallKind }

func (*Nop) Type() Type          { return None }
func (b *Block) Type() Type      { return b.Ty }
func (l *Loop) Type() Type       { return typeOf(l.Body) }
func (*If) Type() Type           { return None }
func (l *LocalGet) Type() Type   { return l.Ty }
func (*Store) Type() Type        { return None }
func (*MemoryFill) Type() Type   { return None }
func (*MemoryCopy) Type() Type   { return None }
func (*Drop) Type() Type         { return None }
func (*Return) Type() Type       { return None }
func (c *Call) Type() Type       { return c.Ty }
func (c *Const) Type() Type      { return c.Value.Type }
func (b *Binary) Type() Type     { return b.Op.Type() }
func (l *Load) Type() Type       { return l.Ty }
func (l *LocalSet) Type() Type {
	if l.Tee {
		return l.Ty
	}
	return None
}

func (*Nop) expression()        {}
func (*Block) expression()      {}
func (*Loop) expression()       {}
func (*If) expression()         {}
func (*LocalGet) expression()   {}
func (*LocalSet) expression()   {}
func (*Const) expression()      {}
func (*Binary) expression()     {}
func (*Load) expression()       {}
func (*Store) expression()      {}
func (*MemoryFill) expression() {}
func (*MemoryCopy) expression() {}
func (*Drop) expression()       {}
func (*Return) expression()     {}
func (*Call) expression()       {}

func typeOf(e Expression) Type {
	if e == nil {
		return None
	}
	return e.Type()
}

// HasSideEffects reports whether evaluating e can write memory, locals,
// transfer control or call out. Unknown shapes are assumed to have effects.
func HasSideEffects(e Expression) bool {
	switch n := e.(type) {
	case nil:
		return false
	case *Nop, *LocalGet, *Const:
		return false
	case *Binary:
		return HasSideEffects(n.Left) || HasSideEffects(n.Right)
	case *Load:
		// loads can trap on out-of-bounds addresses
		return true
	case *Drop:
		return HasSideEffects(n.Value)
	case *Block:
		if n.Name != "" {
			return true
		}
		for _, child := range n.List {
			if HasSideEffects(child) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

package ir

// Builder constructs IR nodes. It keeps a reference to the module for
// read-only type lookups and holds no other state, so each pass instance can
// create its own.
type Builder struct {
	module *Module
}

// NewBuilder creates a new IR builder for module
func NewBuilder(module *Module) *Builder {
	return &Builder{module: module}
}

func (b *Builder) MakeNop() *Nop {
	return &Nop{}
}

func (b *Builder) MakeLocalGet(index int, ty Type) *LocalGet {
	return &LocalGet{Index: index, Ty: ty}
}

func (b *Builder) MakeLocalSet(index int, value Expression) *LocalSet {
	return &LocalSet{Index: index, Value: value}
}

func (b *Builder) MakeLocalTee(index int, value Expression, ty Type) *LocalSet {
	return &LocalSet{Index: index, Value: value, Tee: true, Ty: ty}
}

// MakeConst builds a constant. A bare int32 is the common case for
// addresses and sizes; use MakeConstLiteral for other types.
func (b *Builder) MakeConst(value int32) *Const {
	return &Const{Value: LiteralI32(value)}
}

func (b *Builder) MakeConstLiteral(value Literal) *Const {
	return &Const{Value: value}
}

func (b *Builder) MakeBinary(op BinaryOp, left, right Expression) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// MakeStore builds a store of the full width of the value type
func (b *Builder) MakeStore(ptr, value Expression, ty Type) *Store {
	return &Store{Bytes: ty.Size(), Ptr: ptr, Value: value, ValueType: ty}
}

func (b *Builder) MakeLoad(bytes int, offset uint32, ptr Expression, ty Type) *Load {
	return &Load{Bytes: bytes, Offset: offset, Ptr: ptr, Ty: ty}
}

func (b *Builder) MakeMemoryFill(dest, value, size Expression) *MemoryFill {
	return &MemoryFill{Dest: dest, Value: value, Size: size}
}

func (b *Builder) MakeMemoryCopy(dest, source, size Expression) *MemoryCopy {
	return &MemoryCopy{Dest: dest, Source: source, Size: size}
}

func (b *Builder) MakeDrop(value Expression) *Drop {
	return &Drop{Value: value}
}

func (b *Builder) MakeReturn(value Expression) *Return {
	return &Return{Value: value}
}

// MakeBlock builds an unnamed block; its type is the type of the last child
func (b *Builder) MakeBlock(list ...Expression) *Block {
	block := &Block{List: list}
	if len(list) > 0 {
		block.Ty = typeOf(list[len(list)-1])
	}
	return block
}

// MakeCall builds a call, taking the result type from the callee when the
// module defines it
func (b *Builder) MakeCall(target string, operands ...Expression) *Call {
	call := &Call{Target: target, Operands: operands}
	if b.module != nil {
		if fn := b.module.GetFunction(target); fn != nil {
			call.Ty = fn.ResultType()
		}
	}
	return call
}

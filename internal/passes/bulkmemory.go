package passes

import (
	"math"
	"strings"

	"github.com/torokati44/binaryen/internal/ir"
)

// OffsetMatch is an address of the form local + constant
type OffsetMatch struct {
	Local  int
	Offset int
}

// matchOffset recognizes a bare local.get or an i32.add of one local.get and
// one i32.const, in either order
func matchOffset(e ir.Expression) (OffsetMatch, bool) {
	switch n := e.(type) {
	case *ir.LocalGet:
		return OffsetMatch{Local: n.Index}, true
	case *ir.Binary:
		if n.Op != ir.AddInt32 {
			return OffsetMatch{}, false
		}
		get, c := localPlusConst(n.Left, n.Right)
		if get == nil {
			get, c = localPlusConst(n.Right, n.Left)
		}
		if get == nil || c.Value.Type != ir.I32 {
			return OffsetMatch{}, false
		}
		return OffsetMatch{Local: get.Index, Offset: int(c.Value.GetI32())}, true
	}
	return OffsetMatch{}, false
}

func localPlusConst(a, b ir.Expression) (*ir.LocalGet, *ir.Const) {
	get, ok := a.(*ir.LocalGet)
	if !ok {
		return nil, nil
	}
	c, ok := b.(*ir.Const)
	if !ok {
		return nil, nil
	}
	return get, c
}

// MemRange is the byte range [Begin, End) above local Base that is set to
// the low byte of local Value
type MemRange struct {
	Base  int
	Begin int
	End   int
	Value int
}

// InvalidRange means "not a fill-like write" or "cannot merge"
var InvalidRange = MemRange{Base: -1}

func (r MemRange) IsValid() bool {
	return r.Base >= 0 && r.Begin <= r.End
}

func (r MemRange) IsEmpty() bool {
	return r.IsValid() && r.Begin == r.End
}

// Len is the number of bytes covered
func (r MemRange) Len() int {
	return r.End - r.Begin
}

// MergeRanges joins two ranges of the same base and value that touch at a
// boundary. Gaps and overlaps give InvalidRange.
func MergeRanges(a, b MemRange) MemRange {
	if !a.IsValid() || !b.IsValid() || a.Base != b.Base || a.Value != b.Value {
		return InvalidRange
	}
	if a.End != b.Begin && a.Begin != b.End {
		return InvalidRange
	}
	return MemRange{
		Base:  a.Base,
		Begin: min(a.Begin, b.Begin),
		End:   max(a.End, b.End),
		Value: a.Value,
	}
}

// recognizeWrite maps a store or memory.fill of a local value to the range
// it writes
func recognizeWrite(e ir.Expression, width StoreWidth) MemRange {
	switch n := e.(type) {
	case *ir.Store:
		value, ok := fillValue(n.Value)
		if !ok {
			return InvalidRange
		}
		m, ok := matchOffset(n.Ptr)
		if !ok {
			return InvalidRange
		}
		begin := m.Offset + int(n.Offset)
		size := 1
		if width == AccessWidth {
			size = n.Bytes
		}
		return makeRange(m.Local, begin, begin+size, value)
	case *ir.MemoryFill:
		value, ok := fillValue(n.Value)
		if !ok {
			return InvalidRange
		}
		m, ok := matchOffset(n.Dest)
		if !ok {
			return InvalidRange
		}
		size, ok := n.Size.(*ir.Const)
		if !ok || size.Value.Type != ir.I32 {
			return InvalidRange
		}
		return makeRange(m.Local, m.Offset, m.Offset+int(size.Value.GetI32()), value)
	}
	return InvalidRange
}

// fillValue accepts a bare local.get usable as a memory.fill value operand
func fillValue(e ir.Expression) (int, bool) {
	get, ok := e.(*ir.LocalGet)
	if !ok || get.Ty != ir.I32 {
		return 0, false
	}
	return get.Index, true
}

// makeRange drops ranges whose bounds do not fit an i32 constant
func makeRange(base, begin, end, value int) MemRange {
	if begin < math.MinInt32 || end > math.MaxInt32 {
		return InvalidRange
	}
	return MemRange{Base: base, Begin: begin, End: end, Value: value}
}

// UseBulkMemoryIntrinsics merges runs of adjacent stores of one local value
// into memory.fill, and can replace libc memset/memcpy bodies with the
// bulk memory instructions.
type UseBulkMemoryIntrinsics struct {
	opts    Options
	builder *ir.Builder
	fn      *ir.Function
	merges  int
}

// NewUseBulkMemoryIntrinsics creates the pass with opts
func NewUseBulkMemoryIntrinsics(opts Options) *UseBulkMemoryIntrinsics {
	return &UseBulkMemoryIntrinsics{opts: opts}
}

func (p *UseBulkMemoryIntrinsics) Name() string {
	return "use-bulk-memory-intrinsics"
}

func (p *UseBulkMemoryIntrinsics) Description() string {
	return "Merges adjacent stores of one local value into memory.fill"
}

func (p *UseBulkMemoryIntrinsics) IsFunctionParallel() bool { return true }

func (p *UseBulkMemoryIntrinsics) Create() FunctionPass {
	return NewUseBulkMemoryIntrinsics(p.opts)
}

// Merges returns the number of instructions absorbed into fills so far
func (p *UseBulkMemoryIntrinsics) Merges() int {
	return p.merges
}

func (p *UseBulkMemoryIntrinsics) RunOnFunction(module *ir.Module, fn *ir.Function) bool {
	p.builder = ir.NewBuilder(module)
	p.fn = fn
	defer func() { p.fn = nil }()

	if p.opts.IntrinsifyLibc && p.intrinsify(fn) {
		return true
	}

	changed := false
	ir.PostWalkFunction(fn, func(e ir.Expression) ir.Expression {
		if block, ok := e.(*ir.Block); ok && p.rewriteBlock(block) {
			changed = true
		}
		return nil
	})
	return changed
}

// rewriteBlock rebuilds block.List, folding each run of mergeable writes
// into one fill. Writes that absorb nothing are kept as they are.
func (p *UseBulkMemoryIntrinsics) rewriteBlock(block *ir.Block) bool {
	if len(block.List) < 2 {
		return false
	}

	out := make([]ir.Expression, 0, len(block.List))
	var pending ir.Expression
	acc := InvalidRange
	absorbed := 0

	flush := func() {
		if pending == nil {
			return
		}
		if absorbed == 0 {
			out = append(out, pending)
		} else {
			out = append(out, p.makeFill(acc))
		}
		pending = nil
	}

	for _, child := range block.List {
		if pending != nil {
			if merged := MergeRanges(acc, recognizeWrite(child, p.opts.StoreWidth)); merged.IsValid() {
				acc = merged
				absorbed++
				p.merges++
				p.report(acc, absorbed+1)
				continue
			}
		}
		flush()
		pending = child
		acc = recognizeWrite(child, p.opts.StoreWidth)
		absorbed = 0
	}
	flush()

	if len(out) == len(block.List) {
		return false
	}
	block.List = out
	return true
}

func (p *UseBulkMemoryIntrinsics) makeFill(r MemRange) *ir.MemoryFill {
	var dest ir.Expression = p.builder.MakeLocalGet(r.Base, p.fn.LocalType(r.Base))
	if r.Begin != 0 {
		dest = p.builder.MakeBinary(ir.AddInt32, dest, p.builder.MakeConst(int32(r.Begin)))
	}
	return p.builder.MakeMemoryFill(
		dest,
		p.builder.MakeLocalGet(r.Value, p.fn.LocalType(r.Value)),
		p.builder.MakeConst(int32(r.Len())),
	)
}

func (p *UseBulkMemoryIntrinsics) report(r MemRange, count int) {
	if p.opts.Diagnostic == nil {
		return
	}
	p.opts.Diagnostic(Merge{Function: p.fn.Name, Range: r, Count: count})
}

// intrinsify replaces the body of a libc style memset or memcpy with the
// equivalent bulk memory instruction. Only (i32, i32, i32) signatures qualify.
func (p *UseBulkMemoryIntrinsics) intrinsify(fn *ir.Function) bool {
	if len(fn.Params) != 3 {
		return false
	}
	for _, ty := range fn.Params {
		if ty != ir.I32 {
			return false
		}
	}

	arg := func(i int) ir.Expression { return p.builder.MakeLocalGet(i, ir.I32) }

	var op ir.Expression
	switch {
	case strings.Contains(fn.Name, "memset"):
		op = p.builder.MakeMemoryFill(arg(0), arg(1), arg(2))
	case strings.Contains(fn.Name, "memcpy"):
		op = p.builder.MakeMemoryCopy(arg(0), arg(1), arg(2))
	default:
		return false
	}

	list := []ir.Expression{op}
	if fn.ResultType() == ir.I32 {
		list = append(list, p.builder.MakeReturn(arg(0)))
	}
	body := p.builder.MakeBlock(list...)
	body.Ty = fn.ResultType()
	fn.Body = body
	return true
}

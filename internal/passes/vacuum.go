package passes

import (
	"github.com/torokati44/binaryen/internal/ir"
)

// Vacuum removes code that does nothing: nops, drops of pure values and
// the boundaries of unnamed void blocks. Stores separated only by such code
// end up adjacent.
type Vacuum struct{}

func (v *Vacuum) Name() string {
	return "vacuum"
}

func (v *Vacuum) Description() string {
	return "Removes nops and unused pure values, flattens nested blocks"
}

func (v *Vacuum) IsFunctionParallel() bool { return true }

func (v *Vacuum) Create() FunctionPass { return new(Vacuum) }

func (v *Vacuum) RunOnFunction(module *ir.Module, fn *ir.Function) bool {
	changed := false
	ir.PostWalkFunction(fn, func(e ir.Expression) ir.Expression {
		if block, ok := e.(*ir.Block); ok && v.cleanBlock(block) {
			changed = true
		}
		return nil
	})
	return changed
}

// cleanBlock rebuilds block.List without dead children
func (v *Vacuum) cleanBlock(block *ir.Block) bool {
	newList := make([]ir.Expression, 0, len(block.List))
	changed := false

	for _, child := range block.List {
		switch n := child.(type) {
		case *ir.Nop:
			changed = true
			continue
		case *ir.Drop:
			if !ir.HasSideEffects(n.Value) {
				changed = true
				continue
			}
		case *ir.Block:
			if n.Name == "" && n.Ty == ir.None {
				newList = append(newList, n.List...)
				changed = true
				continue
			}
		}
		newList = append(newList, child)
	}

	if changed {
		block.List = newList
	}
	return changed
}

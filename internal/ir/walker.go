package ir

// VisitFunc is called for a node after all of its children have been
// visited. A non-nil result replaces the node in its parent.
type VisitFunc func(e Expression) Expression

// PostWalk visits e and every node below it in post-order and returns the
// (possibly replaced) root.
func PostWalk(e Expression, visit VisitFunc) Expression {
	if e == nil {
		return nil
	}
	for _, slot := range childSlots(e) {
		if *slot != nil {
			*slot = PostWalk(*slot, visit)
		}
	}
	if replacement := visit(e); replacement != nil {
		return replacement
	}
	return e
}

// PostWalkFunction runs PostWalk over the body of fn and stores the result back
func PostWalkFunction(fn *Function, visit VisitFunc) {
	fn.Body = PostWalk(fn.Body, visit)
}

// Inspect traverses e in pre-order, calling f for each node. Children of a
// node are skipped when f returns false.
func Inspect(e Expression, f func(Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, slot := range childSlots(e) {
		Inspect(*slot, f)
	}
}

// Count returns the number of nodes in e for which pred holds
func Count(e Expression, pred func(Expression) bool) int {
	n := 0
	Inspect(e, func(e Expression) bool {
		if pred(e) {
			n++
		}
		return true
	})
	return n
}

// childSlots returns pointers to the child fields of e in evaluation order
func childSlots(e Expression) []*Expression {
	switch n := e.(type) {
	case *Block:
		slots := make([]*Expression, len(n.List))
		for i := range n.List {
			slots[i] = &n.List[i]
		}
		return slots
	case *Loop:
		return []*Expression{&n.Body}
	case *If:
		return []*Expression{&n.Condition, &n.IfTrue, &n.IfFalse}
	case *LocalSet:
		return []*Expression{&n.Value}
	case *Binary:
		return []*Expression{&n.Left, &n.Right}
	case *Load:
		return []*Expression{&n.Ptr}
	case *Store:
		return []*Expression{&n.Ptr, &n.Value}
	case *MemoryFill:
		return []*Expression{&n.Dest, &n.Value, &n.Size}
	case *MemoryCopy:
		return []*Expression{&n.Dest, &n.Source, &n.Size}
	case *Drop:
		return []*Expression{&n.Value}
	case *Return:
		return []*Expression{&n.Value}
	case *Call:
		slots := make([]*Expression, len(n.Operands))
		for i := range n.Operands {
			slots[i] = &n.Operands[i]
		}
		return slots
	default:
		return nil
	}
}

// Package passes contains IR transformations and the pipeline that runs them.
package passes

import (
	"github.com/torokati44/binaryen/internal/ir"
)

// Pass is a single named transformation
type Pass interface {
	Name() string
	Description() string
}

// ModulePass transforms a whole module at once
type ModulePass interface {
	Pass
	Apply(module *ir.Module) bool // Returns true if changes were made
}

// FunctionPass transforms one function at a time. When IsFunctionParallel
// reports true the pipeline runs a separate instance from Create on each
// function concurrently; instances only read the module.
type FunctionPass interface {
	Pass
	IsFunctionParallel() bool
	Create() FunctionPass
	RunOnFunction(module *ir.Module, fn *ir.Function) bool
}

// MergeCounter is implemented by passes that combine instructions
type MergeCounter interface {
	Merges() int
}

// StoreWidth selects how many bytes a recognized store covers
type StoreWidth int

const (
	// UnitWidth counts every store as one byte
	UnitWidth StoreWidth = iota
	// AccessWidth uses the access width of the store (1, 2, 4 or 8)
	AccessWidth
)

func (w StoreWidth) String() string {
	if w == AccessWidth {
		return "access"
	}
	return "unit"
}

// ParseStoreWidth accepts "unit" and "access"
func ParseStoreWidth(s string) (StoreWidth, bool) {
	switch s {
	case "unit", "":
		return UnitWidth, true
	case "access":
		return AccessWidth, true
	}
	return UnitWidth, false
}

// Options configures pass instances created from the registry
type Options struct {
	StoreWidth     StoreWidth
	IntrinsifyLibc bool

	// Diagnostic receives a report for every merge; nil disables reporting
	Diagnostic DiagnosticFunc
}

// Merge describes one successful range merge
type Merge struct {
	Function string
	Range    MemRange
	Count    int // instructions absorbed so far by this range
}

// DiagnosticFunc receives merge reports. It may be called from several
// goroutines at once when a pass runs function-parallel.
type DiagnosticFunc func(Merge)

// Stats summarizes one pass run over a module
type Stats struct {
	Pass    string
	Changed bool
	Merges  int
}

package passes

import (
	"sort"

	"github.com/torokati44/binaryen/internal/errors"
)

// PassDescriptor ties a registry name to a constructor
type PassDescriptor struct {
	Name string
	Desc string
	New  func(Options) Pass
}

var registry = [...]PassDescriptor{
	{Name: "const-fold", Desc: "Folds integer arithmetic on two constants", New: func(Options) Pass { return new(ConstantFolding) }},
	{Name: "vacuum", Desc: "Removes nops and unused pure values, flattens nested blocks", New: func(Options) Pass { return new(Vacuum) }},
	{Name: "use-bulk-memory-intrinsics", Desc: "Merges adjacent stores of one value into memory.fill", New: func(opts Options) Pass {
		return NewUseBulkMemoryIntrinsics(opts)
	}},
}

// DefaultPasses is the pipeline used when no pass list is configured
var DefaultPasses = []string{"const-fold", "vacuum", "use-bulk-memory-intrinsics"}

// Lookup returns the descriptor registered under name
func Lookup(name string) (PassDescriptor, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return PassDescriptor{}, false
}

// Names lists every registered pass name in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, d := range registry {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the named passes in order
func Create(names []string, opts Options) ([]Pass, error) {
	passes := make([]Pass, 0, len(names))
	for _, name := range names {
		d, ok := Lookup(name)
		if !ok {
			return nil, errors.UnknownPass(name, Names())
		}
		passes = append(passes, d.New(opts))
	}
	return passes, nil
}

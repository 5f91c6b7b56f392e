package ir

// Module is a compilation unit: one linear memory and a list of functions
type Module struct {
	// Memory is the initial size of the linear memory in pages, -1 when the
	// module declares no memory
	Memory    int
	Functions []*Function
}

// Function is a single function. Locals are numbered params first, then vars.
type Function struct {
	Name    string
	Params  []Type
	Results []Type
	Vars    []Type
	Body    Expression

	// LocalNames maps local indices to their text names, when known
	LocalNames map[int]string
}

// NewModule returns an empty module without memory
func NewModule() *Module {
	return &Module{Memory: -1}
}

// GetFunction returns the function named name, or nil
func (m *Module) GetFunction(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// NumLocals is the number of params plus vars
func (f *Function) NumLocals() int {
	return len(f.Params) + len(f.Vars)
}

// LocalType returns the type of local index i, or None when out of range
func (f *Function) LocalType(i int) Type {
	switch {
	case i < 0:
		return None
	case i < len(f.Params):
		return f.Params[i]
	case i < f.NumLocals():
		return f.Vars[i-len(f.Params)]
	default:
		return None
	}
}

// IsParam reports whether local index i is a parameter
func (f *Function) IsParam(i int) bool {
	return i >= 0 && i < len(f.Params)
}

// ResultType is the single result type, or None
func (f *Function) ResultType() Type {
	if len(f.Results) == 0 {
		return None
	}
	return f.Results[0]
}

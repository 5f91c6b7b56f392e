package grammar

import (
	"strings"
)

func (f *File) String() string {
	var b strings.Builder
	for _, e := range f.Exprs {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (s *SExpr) String() string {
	parts := []string{s.Head}
	for _, a := range s.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *Atom) String() string {
	switch {
	case a.List != nil:
		return a.List.String()
	case a.Ident != nil:
		return *a.Ident
	case a.Number != nil:
		return *a.Number
	case a.Keyword != nil:
		return *a.Keyword
	}
	return ""
}

// Text returns the token text of a non-list atom
func (a *Atom) Text() string {
	if a.List != nil {
		return ""
	}
	return a.String()
}

package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorBuilder provides a fluent interface for creating diagnostics with suggestions
type ErrorBuilder struct {
	err CompilerError
}

// NewError creates a new error builder
func NewError(code, message string, pos Position) *ErrorBuilder {
	return &ErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewWarning creates a new warning builder
func NewWarning(code, message string, pos Position) *ErrorBuilder {
	b := NewError(code, message, pos)
	b.err.Level = Warning
	return b
}

// WithLength sets the length of the error span
func (b *ErrorBuilder) WithLength(length int) *ErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *ErrorBuilder) WithSuggestion(message string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *ErrorBuilder) WithReplacement(message, replacement string, pos Position, length int) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
		Position:    pos,
		Length:      length,
	})
	return b
}

// WithNote adds a note to the error
func (b *ErrorBuilder) WithNote(note string) *ErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *ErrorBuilder) WithHelp(help string) *ErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *ErrorBuilder) Build() CompilerError {
	return b.err
}

// Common constructors

// UnknownInstruction reports a form head that is not a known opcode
func UnknownInstruction(name string, pos Position, known []string) CompilerError {
	builder := NewError(ErrorUnknownInstruction, fmt.Sprintf("unknown instruction '%s'", name), pos).
		WithLength(len(name) + 1)

	similar := findSimilarNames(name, known)
	switch {
	case len(similar) == 1:
		// the opcode starts right after the opening parenthesis
		at := pos
		at.Column++
		builder = builder.WithReplacement(didYouMean(similar), similar[0], at, len(name))
	case len(similar) > 1:
		builder = builder.WithSuggestion(didYouMean(similar))
	}
	return builder.Build()
}

// WrongArity reports an instruction with too few or too many operands
func WrongArity(name string, expected, actual int, pos Position) CompilerError {
	message := fmt.Sprintf("'%s' expects %d operand(s), found %d", name, expected, actual)
	return NewError(ErrorWrongArity, message, pos).
		WithLength(len(name) + 1).
		Build()
}

// InvalidLiteral reports a numeric literal that does not parse as ty
func InvalidLiteral(text, ty string, pos Position) CompilerError {
	return NewError(ErrorInvalidLiteral, fmt.Sprintf("invalid %s literal '%s'", ty, text), pos).
		WithLength(len(text)).
		WithHelp("integers may be decimal or 0x-prefixed hexadecimal and must fit the type").
		Build()
}

// InvalidMemarg reports a malformed offset=/align= immediate
func InvalidMemarg(text string, pos Position) CompilerError {
	return NewError(ErrorInvalidMemarg, fmt.Sprintf("invalid memory argument '%s'", text), pos).
		WithLength(len(text)).
		WithSuggestion("use offset=N or align=N with an unsigned integer").
		Build()
}

// UnexpectedForm reports a top level form other than module or func
func UnexpectedForm(name string, pos Position) CompilerError {
	return NewError(ErrorUnexpectedForm, fmt.Sprintf("unexpected top level form '%s'", name), pos).
		WithLength(len(name) + 1).
		WithSuggestion("wrap functions in (module ...)").
		Build()
}

// UnknownLocal reports a local.get/set of a local that does not exist
func UnknownLocal(ref, function string, pos Position, declared []string) CompilerError {
	builder := NewError(ErrorUnknownLocal, fmt.Sprintf("unknown local '%s' in function '%s'", ref, function), pos).
		WithLength(len(ref))

	if similar := findSimilarNames(ref, declared); len(similar) > 0 {
		builder = builder.WithSuggestion(didYouMean(similar))
	} else {
		builder = builder.WithSuggestion("declare it with (local $name type) or (param $name type)")
	}
	return builder.Build()
}

// UnknownFunction reports a call to a function that is not defined
func UnknownFunction(name string, pos Position, defined []string) CompilerError {
	builder := NewError(ErrorUnknownFunction, fmt.Sprintf("call to undefined function '%s'", name), pos).
		WithLength(len(name))

	if similar := findSimilarNames(name, defined); len(similar) > 0 {
		builder = builder.WithSuggestion(didYouMean(similar))
	}
	return builder.Build()
}

// UnknownType reports an unsupported value type name
func UnknownType(name string, pos Position) CompilerError {
	return NewError(ErrorUnknownType, fmt.Sprintf("unknown value type '%s'", name), pos).
		WithLength(len(name)).
		WithNote("supported types are i32, i64, f32 and f64").
		Build()
}

// TypeMismatch reports an operand whose type does not fit the instruction
func TypeMismatch(instruction, expected, actual string, pos Position) CompilerError {
	message := fmt.Sprintf("type mismatch in '%s': expected %s, found %s", instruction, expected, actual)
	return NewError(ErrorTypeMismatch, message, pos).
		WithLength(len(instruction) + 1).
		Build()
}

// DuplicateDeclaration reports a function or local name declared twice
func DuplicateDeclaration(name string, pos Position) CompilerError {
	return NewError(ErrorDuplicateDeclaration, fmt.Sprintf("duplicate declaration of '%s'", name), pos).
		WithLength(len(name)).
		WithSuggestion("rename one of the declarations").
		Build()
}

// UnknownPass reports a pass name that is not registered
func UnknownPass(name string, registered []string) CompilerError {
	builder := NewError(ErrorUnknownPass, fmt.Sprintf("unknown pass '%s'", name), Position{})

	if similar := findSimilarNames(name, registered); len(similar) > 0 {
		builder = builder.WithSuggestion(didYouMean(similar))
	} else {
		sorted := append([]string(nil), registered...)
		sort.Strings(sorted)
		builder = builder.WithNote("registered passes: " + strings.Join(sorted, ", "))
	}
	return builder.Build()
}

// NoMemory warns about a memory instruction in a module without (memory ...)
func NoMemory(instruction string, pos Position) CompilerError {
	return NewWarning(WarningNoMemory, fmt.Sprintf("'%s' used but the module declares no memory", instruction), pos).
		WithLength(len(instruction) + 1).
		WithSuggestion("add (memory 1) to the module").
		Build()
}

func didYouMean(similar []string) string {
	if len(similar) == 1 {
		return fmt.Sprintf("did you mean '%s'?", similar[0])
	}
	return fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '"))
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string

	for _, candidate := range candidates {
		if candidate != target && levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}

	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rolling rows are enough
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

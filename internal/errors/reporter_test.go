package errors

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := `(module
  (func $f (param i32)
    (drop (local.get 3))
  )
)`

	reporter := NewErrorReporter("test.wat", source)

	err := UnknownLocal("3", "f", Position{Filename: "test.wat", Line: 3, Column: 22}, []string{"0"})
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorUnknownLocal+"]")
	assert.Contains(t, formatted, "unknown local '3'")

	// Should contain location and the offending line
	assert.Contains(t, formatted, "test.wat:3:22")
	assert.Contains(t, formatted, "(drop (local.get 3))")

	// Should contain the fallback suggestion
	assert.Contains(t, formatted, "declare it with")
}

func TestFormatErrors(t *testing.T) {
	reporter := NewErrorReporter("a.wat", "(func $f)\n")
	errs := []CompilerError{
		UnexpectedForm("func", Position{Line: 1, Column: 1}),
		NoMemory("memory.fill", Position{Line: 1, Column: 1}),
	}

	formatted := reporter.FormatErrors(errs)
	assert.Contains(t, formatted, "error["+ErrorUnexpectedForm+"]")
	assert.Contains(t, formatted, "warning["+WarningNoMemory+"]")
}

func TestUnknownInstructionSuggestion(t *testing.T) {
	pos := Position{Line: 1, Column: 5}

	err := UnknownInstruction("i32.stor", pos, []string{"i32.store", "i64.store", "memory.fill"})
	assert.Equal(t, ErrorUnknownInstruction, err.Code)
	assert.Contains(t, err.Message, "i32.stor")
	assert.Len(t, err.Suggestions, 1)
	assert.Equal(t, "did you mean 'i32.store'?", err.Suggestions[0].Message)
	assert.Equal(t, "i32.store", err.Suggestions[0].Replacement)
	assert.Equal(t, 6, err.Suggestions[0].Position.Column)
	assert.Equal(t, len("i32.stor"), err.Suggestions[0].Length)

	err = UnknownInstruction("i32.lod", pos, []string{"i32.load", "i64.load"})
	require.Len(t, err.Suggestions, 1)
	assert.Empty(t, err.Suggestions[0].Replacement)

	err = UnknownInstruction("frobnicate", pos, []string{"i32.store"})
	assert.Empty(t, err.Suggestions)
}

func TestCompilerErrorString(t *testing.T) {
	err := WrongArity("i32.add", 2, 1, Position{Filename: "x.wat", Line: 4, Column: 7})
	assert.Equal(t, "x.wat:4:7: error[E0101]: 'i32.add' expects 2 operand(s), found 1", err.Error())

	err = UnknownPass("vaccum", []string{"vacuum", "const-fold"})
	assert.Equal(t, "error[E0300]: unknown pass 'vaccum'", err.Error())
	assert.Contains(t, err.Suggestions[0].Message, "vacuum")
}

func TestHasErrors(t *testing.T) {
	warning := NoMemory("memory.fill", Position{})
	assert.False(t, HasErrors([]CompilerError{warning}))
	assert.True(t, HasErrors([]CompilerError{warning, UnknownType("i8", Position{})}))
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "Syntax", GetErrorCategory(ErrorWrongArity))
	assert.Equal(t, "Name Resolution", GetErrorCategory(ErrorUnknownLocal))
	assert.Equal(t, "Configuration", GetErrorCategory(ErrorUnknownPass))
	assert.Equal(t, "Warning", GetErrorCategory(WarningNoMemory))
	assert.True(t, IsWarning(WarningNoMemory))
	assert.False(t, IsWarning(ErrorTypeMismatch))
	assert.NotEqual(t, "Unknown error code", GetErrorDescription(ErrorInvalidMemarg))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("abc", "abc"))
	assert.Equal(t, 1, levenshteinDistance("vacuum", "vaccum"))
	assert.Equal(t, 3, levenshteinDistance("", "abc"))
	assert.Equal(t, 2, levenshteinDistance("i32.add", "i64.add"))
}

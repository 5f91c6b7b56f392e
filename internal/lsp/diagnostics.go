package lsp

import (
	stderrors "errors"

	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/torokati44/binaryen/internal/errors"
)

// ConvertCompilerErrors transforms loader diagnostics into LSP diagnostics
// for IDE display. Suggestions and notes are appended to the message.
func ConvertCompilerErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, err := range errs {
		severity := protocol.DiagnosticSeverityError
		if err.Level == errors.Warning {
			severity = protocol.DiagnosticSeverityWarning
		}

		message := err.Message
		for _, s := range err.Suggestions {
			message += "\n" + s.Message
		}
		for _, note := range err.Notes {
			message += "\nnote: " + note
		}
		if err.HelpText != "" {
			message += "\nhelp: " + err.HelpText
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    spanRange(err.Position.Line, err.Position.Column, max(1, err.Length)),
			Severity: ptrSeverity(severity),
			Code:     &protocol.IntegerOrString{Value: err.Code},
			Source:   ptrString("bulkmem"),
			Message:  message,
		})
	}

	return diagnostics
}

// ConvertParseError transforms a participle syntax error into a diagnostic
func ConvertParseError(err error) []protocol.Diagnostic {
	line, column := 1, 1
	message := err.Error()

	var pe participle.Error
	if stderrors.As(err, &pe) {
		line, column = pe.Position().Line, pe.Position().Column
		message = pe.Message()
	}

	return []protocol.Diagnostic{{
		Range:    spanRange(line, column, 1),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("bulkmem-parser"),
		Message:  message,
	}}
}

// spanRange converts a 1-based line/column and a length into a 0-based range
func spanRange(line, column, length int) protocol.Range {
	line = max(line-1, 0)
	column = max(column-1, 0)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: uint32(column)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(column + length)},
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

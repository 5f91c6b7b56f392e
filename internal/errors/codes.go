package errors

// Error codes for the text IR front end.
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Syntax and structure errors
// E0200-E0299: Name resolution and type errors
// E0300-E0399: Configuration errors
// W0001-W0099: Warnings

const (
	// E0100: Form is not a known instruction or declaration
	ErrorUnknownInstruction = "E0100"

	// E0101: Form has the wrong number of operands
	ErrorWrongArity = "E0101"

	// E0102: Numeric literal could not be parsed for its type
	ErrorInvalidLiteral = "E0102"

	// E0103: Memory argument such as offset=N is malformed
	ErrorInvalidMemarg = "E0103"

	// E0104: Top level form is not a module or function
	ErrorUnexpectedForm = "E0104"

	// E0200: Local index or $name does not exist in the function
	ErrorUnknownLocal = "E0200"

	// E0201: Call target does not exist in the module
	ErrorUnknownFunction = "E0201"

	// E0202: Value type name is not i32, i64, f32 or f64
	ErrorUnknownType = "E0202"

	// E0203: Operand type does not match the instruction
	ErrorTypeMismatch = "E0203"

	// E0204: Function or local declared twice
	ErrorDuplicateDeclaration = "E0204"

	// E0300: Unknown pass name in a configuration
	ErrorUnknownPass = "E0300"

	// W0001: Memory instruction in a module without memory
	WarningNoMemory = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUnknownInstruction:
		return "Form is not a known instruction or declaration"
	case ErrorWrongArity:
		return "Instruction has the wrong number of operands"
	case ErrorInvalidLiteral:
		return "Numeric literal is not valid for its type"
	case ErrorInvalidMemarg:
		return "Memory argument is malformed"
	case ErrorUnexpectedForm:
		return "Only module and func forms are allowed at the top level"
	case ErrorUnknownLocal:
		return "Local is used but not declared in the function"
	case ErrorUnknownFunction:
		return "Call target is not defined in the module"
	case ErrorUnknownType:
		return "Value type is not supported"
	case ErrorTypeMismatch:
		return "Operand type does not match the instruction"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorUnknownPass:
		return "Pass is not registered"
	case WarningNoMemory:
		return "Memory instruction used without a memory declaration"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case IsWarning(code):
		return "Warning"
	case code >= "E0100" && code < "E0200":
		return "Syntax"
	case code >= "E0200" && code < "E0300":
		return "Name Resolution"
	case code >= "E0300" && code < "E0400":
		return "Configuration"
	default:
		return "Unknown"
	}
}

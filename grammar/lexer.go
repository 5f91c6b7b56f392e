package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `;;[^\n]*`, nil},

		// $names for functions, locals and labels
		{"Ident", `\$[A-Za-z0-9_.\-]+`, nil},

		// Integer and float literals
		{"Number", `[-+]?(0x[0-9a-fA-F]+|[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?)`, nil},

		// Opcodes, type names and memargs such as offset=4 (order matters)
		{"Keyword", `[a-z][a-z0-9_.=]*`, nil},

		{"Punctuation", `[()]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a whole text IR source: normally a single (module ...) form
type File struct {
	Pos   lexer.Position
	Exprs []*SExpr `@@*`
}

// SExpr is a parenthesised form headed by a keyword, e.g. (i32.const 4)
type SExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Head   string  `"(" @Keyword`
	Args   []*Atom `@@* ")"`
}

// Atom is one argument of a form
type Atom struct {
	Pos     lexer.Position
	List    *SExpr  `  @@`
	Ident   *string `| @Ident`
	Number  *string `| @Number`
	Keyword *string `| @Keyword`
}

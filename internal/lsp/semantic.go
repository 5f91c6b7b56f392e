package lsp

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/ir"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

const declaration = 1 << 0

// collectSemanticTokens walks the parse tree in source order
func collectSemanticTokens(file *grammar.File) []SemanticToken {
	var tokens []SemanticToken

	if file == nil {
		return tokens
	}

	for _, s := range file.Exprs {
		tokens = append(tokens, walkSExpr(s)...)
	}

	return tokens
}

func walkSExpr(s *grammar.SExpr) []SemanticToken {
	// the head follows the opening parenthesis directly
	head := s.Pos
	head.Column++
	tokens := makeToken(head, len(s.Head), "keyword", 0)

	for i, arg := range s.Args {
		switch {
		case arg.List != nil:
			tokens = append(tokens, walkSExpr(arg.List)...)
		case arg.Ident != nil:
			tokenType, modifiers := identRole(s.Head, i)
			tokens = append(tokens, makeToken(arg.Pos, len(*arg.Ident), tokenType, modifiers)...)
		case arg.Number != nil:
			tokens = append(tokens, makeToken(arg.Pos, len(*arg.Number), "number", 0)...)
		case arg.Keyword != nil:
			tokens = append(tokens, makeToken(arg.Pos, len(*arg.Keyword), keywordRole(*arg.Keyword), 0)...)
		}
	}

	return tokens
}

// identRole classifies a $name by the form it appears in
func identRole(head string, index int) (string, int) {
	switch head {
	case "func":
		if index == 0 {
			return "function", declaration
		}
	case "call":
		return "function", 0
	case "param":
		return "parameter", declaration
	case "local":
		return "variable", declaration
	case "local.get", "local.set", "local.tee":
		return "variable", 0
	}
	return "property", 0
}

func keywordRole(keyword string) string {
	if _, ok := ir.ParseType(keyword); ok {
		return "type"
	}
	if strings.Contains(keyword, "=") {
		return "property"
	}
	return "keyword"
}

func makeToken(pos lexer.Position, length int, tokenType string, modifiers int) []SemanticToken {
	if pos.Line <= 0 || pos.Column <= 0 || length <= 0 {
		return nil
	}

	index := -1
	for i, t := range SemanticTokenTypes {
		if t == tokenType {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      index,
		TokenModifiers: modifiers,
	}}
}

// encodeSemanticTokens packs tokens into the LSP wire format using
// delta-line, delta-start compression
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return data
}

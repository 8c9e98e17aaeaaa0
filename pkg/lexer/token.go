// Package lexer implements the tokenizer for Pris source files.
// It is a single-pass state machine over the raw UTF-8 bytes of a file,
// producing tokens that carry byte offsets into the source rather than
// copies of the text.
package lexer

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	// Literals
	TokenString    TokenKind = iota // double-quoted string literal
	TokenRawString                  // ---raw string---
	TokenColor                      // #rrggbb
	TokenNumber                     // number literal (unit emitted separately)
	TokenIdent                      // identifier

	// Keywords
	TokenKwAt       // at
	TokenKwFunction // function
	TokenKwImport   // import
	TokenKwPut      // put
	TokenKwReturn   // return

	// Unit suffixes
	TokenUnitEm // em
	TokenUnitH  // h
	TokenUnitW  // w
	TokenUnitPt // pt

	// Punctuation
	TokenComma  // ,
	TokenDot    // .
	TokenEquals // =
	TokenHat    // ^
	TokenMinus  // -
	TokenPlus   // +
	TokenSlash  // /
	TokenStar   // *
	TokenTilde  // ~
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }
)

// Token is a single lexical token. Start and End delimit the token's bytes
// in the source as a half-open range [Start, End).
type Token struct {
	Start int
	Kind  TokenKind
	End   int
}

// String returns a debug-friendly representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenString:
		return "STRING"
	case TokenRawString:
		return "RAWSTRING"
	case TokenColor:
		return "COLOR"
	case TokenNumber:
		return "NUMBER"
	case TokenIdent:
		return "IDENT"
	case TokenKwAt:
		return "AT"
	case TokenKwFunction:
		return "FUNCTION"
	case TokenKwImport:
		return "IMPORT"
	case TokenKwPut:
		return "PUT"
	case TokenKwReturn:
		return "RETURN"
	case TokenUnitEm:
		return "UNIT_EM"
	case TokenUnitH:
		return "UNIT_H"
	case TokenUnitW:
		return "UNIT_W"
	case TokenUnitPt:
		return "UNIT_PT"
	case TokenComma:
		return "COMMA"
	case TokenDot:
		return "DOT"
	case TokenEquals:
		return "EQUALS"
	case TokenHat:
		return "HAT"
	case TokenMinus:
		return "MINUS"
	case TokenPlus:
		return "PLUS"
	case TokenSlash:
		return "SLASH"
	case TokenStar:
		return "STAR"
	case TokenTilde:
		return "TILDE"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenLBrace:
		return "LBRACE"
	case TokenRBrace:
		return "RBRACE"
	default:
		return "UNKNOWN"
	}
}

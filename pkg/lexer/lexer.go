package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/prislang/pris/pkg/types"
)

// state is the lexer's state machine state.
type state int

const (
	stateBase state = iota
	stateDone
	stateInColor
	stateInComment
	stateInIdent
	stateInNumber
	stateInRawString
	stateInString
	stateSpace
)

// Lexer tokenizes a Pris source file.
type Lexer struct {
	input  []byte
	start  int
	state  state
	tokens []Token
}

// Lex tokenizes the full input and returns the tokens, or a located
// lexical error. The input must be the raw bytes of the source file.
func Lex(input []byte) ([]Token, error) {
	l := &Lexer{input: input}
	return l.run()
}

// run drives the state machine until the input is consumed or an error
// occurs. Each state handler consumes bytes and returns the position and
// state to continue from.
func (l *Lexer) run() ([]Token, error) {
	for l.state != stateDone {
		var start int
		var next state
		var err error
		switch l.state {
		case stateBase:
			start, next, err = l.lexBase()
		case stateInColor:
			start, next, err = l.lexColor()
		case stateInComment:
			start, next, err = l.lexComment()
		case stateInIdent:
			start, next, err = l.lexIdent()
		case stateInNumber:
			start, next, err = l.lexNumber()
		case stateInRawString:
			start, next, err = l.lexRawString()
		case stateInString:
			start, next, err = l.lexString()
		case stateSpace:
			start, next, err = l.lexSpace()
		}
		if err != nil {
			return nil, err
		}
		l.start = start
		l.state = next
	}
	return l.tokens, nil
}

// hasAt reports whether the byte sequence occurs at the given index.
func (l *Lexer) hasAt(at int, expected string) bool {
	if at+len(expected) > len(l.input) {
		return false
	}
	for i := 0; i < len(expected); i++ {
		if l.input[at+i] != expected[i] {
			return false
		}
	}
	return true
}

// pushSingle emits a single-byte token and moves the start past it.
func (l *Lexer) pushSingle(at int, kind TokenKind) {
	l.tokens = append(l.tokens, Token{at, kind, at + 1})
	l.start = at + 1
}

// lexBase scans in the base state until a state change occurs. Returns the
// position and state to continue from.
func (l *Lexer) lexBase() (int, state, error) {
	for i := l.start; i < len(l.input); i++ {
		switch b := l.input[i]; {
		// Two characters require a brief lookahead: '/' for a "//"
		// comment, and '-' for a "---" raw string. If the lookahead
		// does not match they are handled as single-byte tokens below.
		case b == '/' && l.hasAt(i+1, "/"):
			return i, stateInComment, nil
		case b == '-' && l.hasAt(i+1, "--"):
			return i, stateInRawString, nil

		// Only spaces and newlines count as whitespace. No tabs or
		// carriage returns.
		case b == '"':
			return i, stateInString, nil
		case b == ' ' || b == '\n':
			return i, stateSpace, nil
		case b == '#':
			return i, stateInColor, nil
		case isAlphabeticOrUnderscore(b):
			return i, stateInIdent, nil
		case isDigit(b):
			return i, stateInNumber, nil

		case b == ',':
			l.pushSingle(i, TokenComma)
		case b == '.':
			l.pushSingle(i, TokenDot)
		case b == '=':
			l.pushSingle(i, TokenEquals)
		case b == '^':
			l.pushSingle(i, TokenHat)
		case b == '-':
			l.pushSingle(i, TokenMinus)
		case b == '+':
			l.pushSingle(i, TokenPlus)
		case b == '/':
			l.pushSingle(i, TokenSlash)
		case b == '*':
			l.pushSingle(i, TokenStar)
		case b == '~':
			l.pushSingle(i, TokenTilde)
		case b == '(':
			l.pushSingle(i, TokenLParen)
		case b == ')':
			l.pushSingle(i, TokenRParen)
		case b == '{':
			l.pushSingle(i, TokenLBrace)
		case b == '}':
			l.pushSingle(i, TokenRBrace)

		// The lead bytes of the UTF-8, UTF-16, and UTF-32 byte order
		// marks get a dedicated encoding error.
		case b == 0xef || b == 0xfe || b == 0xff || b == 0x00:
			return 0, stateDone, encodingError(i, l.input[i:])

		default:
			return 0, stateDone, disallowedByteError(i, l.input[i:])
		}
	}
	return 0, stateDone, nil
}

// lexColor scans a color literal: '#' followed by exactly six hex digits.
func (l *Lexer) lexColor() (int, state, error) {
	start := l.start
	// Skip over the leading '#'.
	for i := 1; i < len(l.input)-start; i++ {
		c := l.input[start+i]

		if i < 7 && isHexadecimal(c) {
			continue
		}
		if i < 7 {
			msg := fmt.Sprintf("Expected hexadecimal digit, found '%c'.", c)
			return 0, stateDone, types.NewLexicalError(start+i, start+i+1, msg)
		}
		// A seventh hex digit, or any alphanumeric byte directly after
		// the six digits, must not silently merge into an identifier;
		// report it here instead of producing a confusing parse error.
		if isHexadecimal(c) {
			msg := "Expected only six hexadecimal digits, found one more."
			return 0, stateDone, types.NewLexicalError(start, start+i+1, msg)
		}
		if isAlphanumericOrUnderscore(c) {
			msg := fmt.Sprintf("Expected six hexadecimal digits, found extra '%c'.", c)
			return 0, stateDone, types.NewLexicalError(start, start+i+1, msg)
		}

		// The color ends at a non-hexadecimal byte, as expected.
		// Re-inspect that byte from the base state.
		l.tokens = append(l.tokens, Token{start, TokenColor, start + i})
		return start + i, stateBase, nil
	}

	// The input ends in a color.
	if len(l.input)-start < 7 {
		msg := "Expected six hexadecimal digits before end of input."
		return 0, stateDone, types.NewLexicalError(start, len(l.input), msg)
	}
	l.tokens = append(l.tokens, Token{start, TokenColor, len(l.input)})
	return 0, stateDone, nil
}

// lexComment skips until a newline, then switches to the whitespace state.
// A comment never emits a token.
func (l *Lexer) lexComment() (int, state, error) {
	for i := l.start + 2; i < len(l.input); i++ {
		if l.input[i] == '\n' {
			// The newline is whitespace after all; continue past it in
			// the whitespace state, no need to re-inspect it.
			return i + 1, stateSpace, nil
		}
	}
	return 0, stateDone, nil
}

// lexIdent scans an identifier or keyword.
func (l *Lexer) lexIdent() (int, state, error) {
	// The first byte is known to be alphabetic or underscore; for the
	// rest digits are allowed too.
	for i := l.start + 1; i < len(l.input); i++ {
		if !isAlphanumericOrUnderscore(l.input[i]) {
			l.pushIdent(l.start, i)
			return i, stateBase, nil
		}
	}
	l.pushIdent(l.start, len(l.input))
	return 0, stateDone, nil
}

// pushIdent emits an identifier token, or a keyword token if the span
// matches one of the reserved words.
func (l *Lexer) pushIdent(start, end int) {
	kind := TokenIdent
	switch string(l.input[start:end]) {
	case "at":
		kind = TokenKwAt
	case "function":
		kind = TokenKwFunction
	case "import":
		kind = TokenKwImport
	case "put":
		kind = TokenKwPut
	case "return":
		kind = TokenKwReturn
	}
	l.tokens = append(l.tokens, Token{start, kind, end})
}

// lexNumber scans a number literal with at most one decimal period, and
// emits a separate unit token when the number carries an em/pt/h/w suffix.
func (l *Lexer) lexNumber() (int, state, error) {
	periodSeen := false

	// Skip over the first byte, it is known to be a digit.
	for i := l.start + 1; i < len(l.input); i++ {
		switch b := l.input[i]; {
		case isDigit(b):
			continue
		case b == '.' && !periodSeen:
			// Allow a single decimal period in the number.
			periodSeen = true
		case b == 'e' && l.hasAt(i+1, "m"):
			l.tokens = append(l.tokens, Token{l.start, TokenNumber, i})
			l.tokens = append(l.tokens, Token{i, TokenUnitEm, i + 2})
			return i + 2, stateBase, nil
		case b == 'p' && l.hasAt(i+1, "t"):
			l.tokens = append(l.tokens, Token{l.start, TokenNumber, i})
			l.tokens = append(l.tokens, Token{i, TokenUnitPt, i + 2})
			return i + 2, stateBase, nil
		case b == 'h':
			l.tokens = append(l.tokens, Token{l.start, TokenNumber, i})
			l.pushSingle(i, TokenUnitH)
			return i + 1, stateBase, nil
		case b == 'w':
			l.tokens = append(l.tokens, Token{l.start, TokenNumber, i})
			l.pushSingle(i, TokenUnitW)
			return i + 1, stateBase, nil
		default:
			// Not a digit, first period, or unit suffix; re-inspect
			// this byte in the base state.
			l.tokens = append(l.tokens, Token{l.start, TokenNumber, i})
			return i, stateBase, nil
		}
	}

	l.tokens = append(l.tokens, Token{l.start, TokenNumber, len(l.input)})
	return 0, stateDone, nil
}

// lexRawString scans until the next "---". There is no escaping.
func (l *Lexer) lexRawString() (int, state, error) {
	// Skip over the "---" that starts the literal.
	for i := l.start + 3; i < len(l.input); i++ {
		if l.input[i] == '-' && l.hasAt(i+1, "--") {
			// The span includes all six delimiter dashes.
			l.tokens = append(l.tokens, Token{l.start, TokenRawString, i + 3})
			return i + 3, stateBase, nil
		}
	}

	msg := "Raw string was not closed with '---' before end of input."
	return 0, stateDone, types.NewLexicalError(l.start, l.start+3, msg)
}

// lexString scans until an unescaped closing quote. A backslash skips the
// next byte without validating the escape code; escape semantics are the
// parser's responsibility.
func (l *Lexer) lexString() (int, state, error) {
	skipNext := false
	for i := l.start + 1; i < len(l.input); i++ {
		if skipNext {
			skipNext = false
			continue
		}
		switch l.input[i] {
		case '\\':
			skipNext = true
		case '"':
			// The span includes both quotes.
			l.tokens = append(l.tokens, Token{l.start, TokenString, i + 1})
			return i + 1, stateBase, nil
		}
	}

	msg := "String was not closed with '\"' before end of input."
	return 0, stateDone, types.NewLexicalError(l.start, l.start+1, msg)
}

// lexSpace consumes a run of spaces and newlines.
func (l *Lexer) lexSpace() (int, state, error) {
	for i := l.start; i < len(l.input); i++ {
		switch l.input[i] {
		case ' ', '\n':
			continue
		case '\t', '\r':
			// Be strict about whitespace; disallowedByteError produces a
			// dedicated message for tabs and carriage returns.
			return 0, stateDone, disallowedByteError(i, l.input[i:])
		default:
			return i, stateBase, nil
		}
	}
	return 0, stateDone, nil
}

func isAlphabetic(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlphabeticOrUnderscore(b byte) bool {
	return isAlphabetic(b) || b == '_'
}

func isAlphanumericOrUnderscore(b byte) bool {
	return isAlphabeticOrUnderscore(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexadecimal(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// encodingError reports a byte order mark at the given offset. If the bytes
// are not a known byte order mark after all, the byte is reported as a
// regular disallowed byte.
func encodingError(at int, rest []byte) error {
	var msg string
	var count int
	switch {
	case hasPrefix(rest, []byte{0xef, 0xbb, 0xbf}):
		msg, count = "Found UTF-8 byte order mark. Please remove it.", 3
	case hasPrefix(rest, []byte{0x00, 0x00, 0xfe, 0xff}) || hasPrefix(rest, []byte{0xff, 0xfe, 0x00, 0x00}):
		msg, count = "Expected UTF-8 encoded file, but found UTF-32 byte order mark.", 4
	case hasPrefix(rest, []byte{0xfe, 0xff}) || hasPrefix(rest, []byte{0xff, 0xfe}):
		msg, count = "Expected UTF-8 encoded file, but found UTF-16 byte order mark.", 2
	default:
		return disallowedByteError(at, rest)
	}
	return types.NewLexicalError(at, at+count, msg)
}

// disallowedByteError reports a byte that is not allowed outside strings
// and comments, with a cause-specific message.
func disallowedByteError(at int, rest []byte) error {
	b := rest[0]
	var msg string
	switch {
	case b == '\t':
		msg = "Found tab character. Please use spaces instead."
	case b == '\r':
		msg = "Found carriage return. Please use Unix line endings instead."
	case b < 0x20 || b == 0x7f:
		// An ASCII control character is likely not printable as-is, so
		// include the byte value and an encoding hint.
		msg = fmt.Sprintf("Found unexpected control character 0x%x. Note that Pris expects UTF-8 encoded files.", b)
	case b < 0x7f:
		msg = fmt.Sprintf("Found unexpected character '%c'.", b)
	default:
		// A non-ASCII byte: try to decode it as UTF-8. If that works,
		// complain about non-ASCII identifiers, otherwise about the
		// encoding.
		r, _ := utf8.DecodeRune(rest)
		if r == utf8.RuneError {
			msg = fmt.Sprintf("Found unexpected byte 0x%x. Note that Pris expects UTF-8 encoded files.", b)
		} else {
			msg = fmt.Sprintf("Found unexpected character '%c'. Note that identifiers must be ASCII.", r)
		}
	}
	return types.NewLexicalError(at, at+1, msg)
}

// hasPrefix reports whether b starts with prefix.
func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

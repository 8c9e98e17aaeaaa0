// Package parser converts a token stream into Pris AST documents and
// terms. It is a recursive descent parser over the output of pkg/lexer.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/lexer"
)

// Parser is a recursive descent parser over a token slice.
type Parser struct {
	src    []byte
	tokens []lexer.Token
	pos    int
}

// Parse lexes and parses a complete source file into a document.
func Parse(src []byte) (*ast.Document, error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}

	p := &Parser{src: src, tokens: tokens}
	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.current()
		return nil, fmt.Errorf("unexpected %s (%q) at byte %d",
			tok.Kind, p.text(tok), tok.Start)
	}
	return doc, nil
}

// ParseTerm lexes and parses a single expression, for tests and the API's
// expression endpoint.
func ParseTerm(src []byte) (ast.Term, error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}

	p := &Parser{src: src, tokens: tokens}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.current()
		return nil, fmt.Errorf("unexpected %s (%q) at byte %d",
			tok.Kind, p.text(tok), tok.Start)
	}
	return term, nil
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// current returns the current token. Callers must check atEnd first.
func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

// text returns the source bytes a token spans.
func (p *Parser) text(tok lexer.Token) string {
	return string(p.src[tok.Start:tok.End])
}

// check reports whether the current token has the given kind.
func (p *Parser) check(kind lexer.TokenKind) bool {
	return !p.atEnd() && p.current().Kind == kind
}

// advance consumes and returns the current token.
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes a token of the expected kind or returns an error.
func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if p.atEnd() {
		return lexer.Token{}, fmt.Errorf("expected %s, found end of input", kind)
	}
	tok := p.current()
	if tok.Kind != kind {
		return tok, fmt.Errorf("expected %s, found %s (%q) at byte %d",
			kind, tok.Kind, p.text(tok), tok.Start)
	}
	p.pos++
	return tok, nil
}

// parseDocument parses statements until end of input or a closing brace.
func (p *Parser) parseDocument() (*ast.Document, error) {
	doc := &ast.Document{}
	for !p.atEnd() && !p.check(lexer.TokenRBrace) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		doc.Stmts = append(doc.Stmts, stmt)
	}
	return doc, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.current().Kind {
	case lexer.TokenKwPut:
		p.advance()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &ast.Put{Term: term}, nil

	case lexer.TokenKwAt:
		p.advance()
		at, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenKwPut); err != nil {
			return nil, err
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &ast.Put{At: at, Term: term}, nil

	case lexer.TokenKwFunction:
		return p.parseFuncDef()

	case lexer.TokenKwReturn:
		p.advance()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &ast.Return{Term: term}, nil

	case lexer.TokenKwImport:
		p.advance()
		path, err := p.parseIdents()
		if err != nil {
			return nil, err
		}
		return &ast.Import{Path: path}, nil

	case lexer.TokenIdent:
		name := p.advance()
		if _, err := p.expect(lexer.TokenEquals); err != nil {
			return nil, err
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: p.text(name), Term: term}, nil

	default:
		tok := p.current()
		return nil, fmt.Errorf("expected a statement, found %s (%q) at byte %d",
			tok.Kind, p.text(tok), tok.Start)
	}
}

func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	p.advance() // consume 'function'
	name, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}

	var params []string
	for !p.check(lexer.TokenRParen) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.TokenComma); err != nil {
				return nil, err
			}
		}
		param, err := p.expect(lexer.TokenIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, p.text(param))
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRBrace); err != nil {
		return nil, err
	}

	return &ast.FuncDef{Name: p.text(name), Params: params, Body: body}, nil
}

// parseTerm is the expression entry point. Precedence, low to high:
// additive (+ -), multiplicative (* /), exponent (^), unary minus,
// primary.
func (p *Parser) parseTerm() (ast.Term, error) {
	return p.parseAdditive()
}

func (p *Parser) parseAdditive() (ast.Term, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() {
		var op ast.BinOp
		switch p.current().Kind {
		case lexer.TokenPlus:
			op = ast.OpAdd
		case lexer.TokenMinus:
			op = ast.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinTerm{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Term, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for !p.atEnd() {
		var op ast.BinOp
		switch p.current().Kind {
		case lexer.TokenStar:
			op = ast.OpMul
		case lexer.TokenSlash:
			op = ast.OpDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &ast.BinTerm{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parseExponent parses a right-associative exponent chain.
func (p *Parser) parseExponent() (ast.Term, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenHat) {
		p.advance()
		exp, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return &ast.BinTerm{Left: base, Op: ast.OpExp, Right: exp}, nil
	}
	return base, nil
}

// parseUnary desugars a leading minus into a subtraction from zero.
func (p *Parser) parseUnary() (ast.Term, error) {
	if p.check(lexer.TokenMinus) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinTerm{Left: &ast.Num{Value: 0}, Op: ast.OpSub, Right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Term, error) {
	if p.atEnd() {
		return nil, fmt.Errorf("expected an expression, found end of input")
	}

	tok := p.current()
	switch tok.Kind {
	case lexer.TokenNumber:
		return p.parseNumber()
	case lexer.TokenString:
		return p.parseString()
	case lexer.TokenRawString:
		p.advance()
		// The span includes the two "---" delimiters; there is no escape
		// processing inside.
		return &ast.StringLit{Value: string(p.src[tok.Start+3 : tok.End-3])}, nil
	case lexer.TokenColor:
		return p.parseColor()
	case lexer.TokenIdent:
		idents, err := p.parseIdents()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.TokenLParen) {
			return p.parseCall(idents)
		}
		return idents, nil
	case lexer.TokenLParen:
		return p.parseParenOrCoord()
	case lexer.TokenLBrace:
		p.advance()
		body, err := p.parseDocument()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBrace); err != nil {
			return nil, err
		}
		return &ast.Block{Body: body}, nil
	default:
		return nil, fmt.Errorf("expected an expression, found %s (%q) at byte %d",
			tok.Kind, p.text(tok), tok.Start)
	}
}

// parseNumber parses a number token with an optional adjacent unit token.
// The lexer guarantees a unit token directly follows its number.
func (p *Parser) parseNumber() (ast.Term, error) {
	tok := p.advance()
	v, err := strconv.ParseFloat(p.text(tok), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q at byte %d", p.text(tok), tok.Start)
	}

	unit := ast.UnitNone
	if !p.atEnd() {
		switch p.current().Kind {
		case lexer.TokenUnitW:
			unit = ast.UnitW
		case lexer.TokenUnitH:
			unit = ast.UnitH
		case lexer.TokenUnitEm:
			unit = ast.UnitEm
		case lexer.TokenUnitPt:
			unit = ast.UnitPt
		}
	}
	if unit != ast.UnitNone {
		p.advance()
	}
	return &ast.Num{Value: v, Unit: unit}, nil
}

// parseString decodes the escape sequences of a string literal. The lexer
// skips escaped bytes without validating them; validation happens here.
func (p *Parser) parseString() (ast.Term, error) {
	tok := p.advance()
	raw := p.src[tok.Start+1 : tok.End-1] // strip the quotes

	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		default:
			return nil, fmt.Errorf("invalid escape sequence '\\%c' at byte %d",
				raw[i], tok.Start+1+i)
		}
	}
	return &ast.StringLit{Value: sb.String()}, nil
}

// parseColor parses a '#rrggbb' token into its three channels.
func (p *Parser) parseColor() (ast.Term, error) {
	tok := p.advance()
	hex := p.text(tok)[1:] // strip the '#', the lexer guarantees 6 hex digits

	channels := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		c, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q at byte %d", p.text(tok), tok.Start)
		}
		channels[i] = uint8(c)
	}
	return &ast.Color{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// parseIdents parses a dotted identifier path.
func (p *Parser) parseIdents() (*ast.Idents, error) {
	first, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	path := []string{p.text(first)}
	for p.check(lexer.TokenDot) {
		p.advance()
		next, err := p.expect(lexer.TokenIdent)
		if err != nil {
			return nil, err
		}
		path = append(path, p.text(next))
	}
	return &ast.Idents{Path: path}, nil
}

// parseCall parses the argument list of a function call.
func (p *Parser) parseCall(callee *ast.Idents) (ast.Term, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}

	var args []ast.Term
	for !p.check(lexer.TokenRParen) {
		if len(args) > 0 {
			if _, err := p.expect(lexer.TokenComma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return &ast.FnCall{Callee: callee, Args: args}, nil
}

// parseParenOrCoord disambiguates a parenthesized term from a coordinate:
// after the first term, a comma means a coordinate.
func (p *Parser) parseParenOrCoord() (ast.Term, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if p.check(lexer.TokenComma) {
		p.advance()
		second, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return &ast.Coord{X: first, Y: second}, nil
	}

	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return first, nil
}

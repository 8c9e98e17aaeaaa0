// Package ast defines the syntax tree for Pris documents: terms (the
// expression shapes), statements, and their canonical textual rendering.
// The renderings reproduce a parseable form and are used in diagnostics.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is the interface for all expression nodes.
type Term interface {
	fmt.Stringer
	termType() string
}

// StringLit is a string literal. Value holds the decoded text with escape
// sequences resolved.
type StringLit struct {
	Value string
}

func (t *StringLit) termType() string { return "String" }

func (t *StringLit) String() string {
	return strconv.Quote(t.Value)
}

// Unit is the optional unit tag of a number literal.
type Unit int

const (
	UnitNone Unit = iota
	UnitW         // fraction of the canvas width
	UnitH         // fraction of the canvas height
	UnitEm        // relative to the ambient font size
	UnitPt        // absolute points
)

func (u Unit) String() string {
	switch u {
	case UnitW:
		return "w"
	case UnitH:
		return "h"
	case UnitEm:
		return "em"
	case UnitPt:
		return "pt"
	default:
		return ""
	}
}

// Num is a number literal: a 64-bit float with an optional unit.
type Num struct {
	Value float64
	Unit  Unit
}

func (t *Num) termType() string { return "Number" }

func (t *Num) String() string {
	return strconv.FormatFloat(t.Value, 'g', -1, 64) + t.Unit.String()
}

// Color is a color literal with three 8-bit channels.
type Color struct {
	R uint8
	G uint8
	B uint8
}

func (t *Color) termType() string { return "Color" }

func (t *Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", t.R, t.G, t.B)
}

// Idents is a dotted identifier path, e.g. "slide.title". The path is
// never empty.
type Idents struct {
	Path []string
}

func (t *Idents) termType() string { return "Idents" }

func (t *Idents) String() string {
	return strings.Join(t.Path, ".")
}

// Coord is a 2-component coordinate of two sub-terms.
type Coord struct {
	X Term
	Y Term
}

func (t *Coord) termType() string { return "Coord" }

func (t *Coord) String() string {
	return fmt.Sprintf("(%s, %s)", t.X, t.Y)
}

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpExp
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpExp:
		return "^"
	default:
		return "?"
	}
}

// BinTerm is a binary operation node.
type BinTerm struct {
	Left  Term
	Op    BinOp
	Right Term
}

func (t *BinTerm) termType() string { return "BinOp" }

func (t *BinTerm) String() string {
	return fmt.Sprintf("(%s %s %s)", t.Left, t.Op, t.Right)
}

// FnCall is a call of a named function with positional arguments.
type FnCall struct {
	Callee *Idents
	Args   []Term
}

func (t *FnCall) termType() string { return "FnCall" }

func (t *FnCall) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", t.Callee, strings.Join(args, ", "))
}

// Block is a braced block of statements evaluating to a frame.
type Block struct {
	Body *Document
}

func (t *Block) termType() string { return "Block" }

func (t *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range t.Body.Stmts {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	fmt.Stringer
	stmtType() string
}

// Document is an ordered sequence of statements. A source file is a
// document, and so is the body of a block or a function.
type Document struct {
	Stmts []Stmt
}

// Assign binds the value of a term to a name in the current scope.
type Assign struct {
	Name string
	Term Term
}

func (s *Assign) stmtType() string { return "Assign" }

func (s *Assign) String() string {
	return fmt.Sprintf("%s = %s", s.Name, s.Term)
}

// Put places a frame into the enclosing frame, either at the current
// anchor or at an explicit coordinate.
type Put struct {
	At   Term // nil places at the current anchor
	Term Term
}

func (s *Put) stmtType() string { return "Put" }

func (s *Put) String() string {
	if s.At != nil {
		return fmt.Sprintf("at %s put %s", s.At, s.Term)
	}
	return fmt.Sprintf("put %s", s.Term)
}

// FuncDef defines a named function with positional parameters.
type FuncDef struct {
	Name   string
	Params []string
	Body   *Document
}

func (s *FuncDef) stmtType() string { return "FuncDef" }

func (s *FuncDef) String() string {
	return fmt.Sprintf("function %s(%s) %s", s.Name,
		strings.Join(s.Params, ", "), (&Block{Body: s.Body}).String())
}

// Return yields a value from a function body.
type Return struct {
	Term Term
}

func (s *Return) stmtType() string { return "Return" }

func (s *Return) String() string {
	return fmt.Sprintf("return %s", s.Term)
}

// Import loads another document and binds its top-level names.
type Import struct {
	Path *Idents
}

func (s *Import) stmtType() string { return "Import" }

func (s *Import) String() string {
	return fmt.Sprintf("import %s", s.Path)
}

package types

import (
	"fmt"
	"strings"
)

// LexicalError is a located error produced while tokenizing a source file.
// Start and End delimit the offending bytes as a half-open range.
type LexicalError struct {
	Start   int
	End     int
	Message string
}

// NewLexicalError creates a located lexical error.
func NewLexicalError(start, end int, message string) *LexicalError {
	return &LexicalError{Start: start, End: end, Message: message}
}

// Error implements the error interface.
func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s at bytes %d-%d", e.Message, e.Start, e.End)
}

// Excerpt renders the offending source line with a caret marking the error
// range, for terminal diagnostics.
func (e *LexicalError) Excerpt(src []byte) string {
	lineStart := 0
	lineNo := 1
	for i := 0; i < e.Start && i < len(src); i++ {
		if src[i] == '\n' {
			lineStart = i + 1
			lineNo++
		}
	}
	lineEnd := lineStart
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}

	col := e.Start - lineStart
	width := e.End - e.Start
	if width < 1 {
		width = 1
	}
	if e.Start+width > lineEnd {
		width = lineEnd - e.Start
		if width < 1 {
			width = 1
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d | %s\n", lineNo, src[lineStart:lineEnd])
	prefix := len(fmt.Sprintf("%d | ", lineNo))
	sb.WriteString(strings.Repeat(" ", prefix+col))
	sb.WriteString(strings.Repeat("^", width))
	return sb.String()
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Func     string
	Expected int
	Actual   int
}

// NewArityError creates an ArityError.
func NewArityError(fn string, expected, actual int) *ArityError {
	return &ArityError{Func: fn, Expected: expected, Actual: actual}
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("'%s' takes %d argument(s), but %d were given", e.Func, e.Expected, e.Actual)
}

// ArgTypeError reports a call argument with the wrong type.
type ArgTypeError struct {
	Func     string
	Index    int // 0-based argument position
	Expected ValType
	Actual   ValType
}

// NewArgTypeError creates an ArgTypeError.
func NewArgTypeError(fn string, index int, expected, actual ValType) *ArgTypeError {
	return &ArgTypeError{Func: fn, Index: index, Expected: expected, Actual: actual}
}

func (e *ArgTypeError) Error() string {
	return fmt.Sprintf("argument %d of '%s' must be %s, but a %s was given",
		e.Index, e.Func, e.Expected, e.Actual)
}

// UnresolvedNameError reports a dotted path not found in any enclosing
// scope.
type UnresolvedNameError struct {
	Path []string
}

// NewUnresolvedNameError creates an UnresolvedNameError.
func NewUnresolvedNameError(path []string) *UnresolvedNameError {
	return &UnresolvedNameError{Path: path}
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("variable '%s' does not exist", strings.Join(e.Path, "."))
}

// TypeError reports a value with the wrong type outside of a call
// boundary, e.g. a variable bound to the wrong kind for an operation.
type TypeError struct {
	Message string
}

// NewTypeError creates a TypeError.
func NewTypeError(msg string) *TypeError {
	return &TypeError{Message: msg}
}

func (e *TypeError) Error() string {
	return e.Message
}

// ValueError reports a syntactically valid argument with a semantically
// invalid value, e.g. a non-enumerated text_align string.
type ValueError struct {
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(msg string) *ValueError {
	return &ValueError{Message: msg}
}

func (e *ValueError) Error() string {
	return e.Message
}

// MissingFontError reports a font that the font map could not resolve.
type MissingFontError struct {
	Family string
	Style  string
}

// NewMissingFontError creates a MissingFontError.
func NewMissingFontError(family, style string) *MissingFontError {
	return &MissingFontError{Family: family, Style: style}
}

func (e *MissingFontError) Error() string {
	return fmt.Sprintf("font '%s' in style '%s' could not be found", e.Family, e.Style)
}

// MissingFileError reports an external file that could not be loaded.
type MissingFileError struct {
	Path string
}

// NewMissingFileError creates a MissingFileError.
func NewMissingFileError(path string) *MissingFileError {
	return &MissingFileError{Path: path}
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file '%s' could not be loaded", e.Path)
}

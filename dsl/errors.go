package dsl

import "fmt"

// ParseError reports a grammar or lexical violation with its source
// position, per spec §4.1 ("any grammar violation ... fails with a Parse
// error carrying position and message").
type ParseError struct {
	Position Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Position.Line, e.Position.Column, e.Message)
}

func newParseError(pos Position, format string, args ...interface{}) *ParseError {
	return &ParseError{Position: pos, Message: fmt.Sprintf(format, args...)}
}

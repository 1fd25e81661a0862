package format

import (
	"errors"
	"fmt"
)

// ParseError reports input tree-sitter could not parse. The file is left
// untouched.
type ParseError struct {
	Offset uint32
	Line   uint32
	Column uint32
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

var (
	// ErrCommentLost means a comment was not placed in the output.
	ErrCommentLost = errors.New("format: comment not emitted")
	// ErrContentLost means a heredoc body was not placed in the output.
	ErrContentLost = errors.New("format: heredoc body not emitted")
	// ErrVerify means the output does not mean what the input meant.
	ErrVerify = errors.New("format: output changes program meaning")
)

// LostError carries the position of the first comment or heredoc that did
// not make it to the output.
type LostError struct {
	Err    error
	Offset uint32
	Text   string
}

func (e *LostError) Error() string {
	return fmt.Sprintf("%v at offset %d: %q", e.Err, e.Offset, e.Text)
}

func (e *LostError) Unwrap() error { return e.Err }

package parser

import (
	"fmt"

	"github.com/rawklang/rawk/internal/token"
)

// Error is a fatal parse failure citing the offending token kind (spec
// §4.3 "Failure mode").
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Pos.Line, e.Message)
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Pos: p.c.cur().Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(ctx string) error {
	return p.errorf("unexpected token %v in %s", p.c.cur().Kind, ctx)
}

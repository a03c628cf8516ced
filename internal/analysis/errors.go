package analysis

import (
	"fmt"

	"github.com/rawklang/rawk/internal/token"
)

// TypeError is a fatal whole-program analysis failure: mixed scalar/array
// use of one name or parameter, or a scalar expression passed where a
// callee expects an array (spec §4.4, §7).
type TypeError struct {
	Pos     token.Position
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%d: %s", e.Pos.Line, e.Message)
}

func errf(pos token.Position, format string, args ...any) error {
	return &TypeError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

package analysis

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/symtab"
)

// MainFunc is the sentinel "caller" identity used for call edges whose
// source is top-level code (BEGIN/END/pattern-action bodies) rather than
// a user-defined function. No real interned symbol is ever negative, so
// this never collides with one.
const MainFunc = symtab.Symbol(-2)

// kindTable tracks the current ArgKind of every global name, shared
// across the whole program. Per-function parameter kinds live directly
// on ast.Function.ParamKinds, addressed by index; this table only needs
// to cover names that resolve outside any enclosing function's
// parameter list.
type kindTable struct {
	globals map[symtab.Symbol]ast.ArgKind
}

func newKindTable() *kindTable {
	return &kindTable{globals: make(map[symtab.Symbol]ast.ArgKind)}
}

func (k *kindTable) globalKind(sym symtab.Symbol) ast.ArgKind {
	return k.globals[sym]
}

// setGlobalKind upgrades an Unknown global to kind, or no-ops if it
// already matches. Returns true if this call changed the table (used by
// pass 2 to decide whether to re-enqueue dependent call edges) and false
// with ok=false on a scalar/array conflict.
func (k *kindTable) setGlobalKind(sym symtab.Symbol, kind ast.ArgKind) (changed, ok bool) {
	cur := k.globals[sym]
	if cur == kind {
		return false, true
	}
	if cur == ast.Unknown {
		k.globals[sym] = kind
		return true, true
	}
	return false, false
}

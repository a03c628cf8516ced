// Package analysis performs the two-pass whole-program type and usage
// analysis from spec §4.4: a per-function pass that classifies every
// name as scalar or array and computes expression ScalarTypes, followed
// by a work-list fixed-point pass that propagates argument kinds across
// call edges until no function's view of its parameters can change.
package analysis

import "github.com/rawklang/rawk/internal/symtab"

// Results is the analysis output: every global's assigned small-integer
// id (for bytecode operands) and kind, the deduplicated string/regex
// constant pool, and the finalized per-function parameter kinds (also
// written back onto the corresponding ast.Function.ParamKinds).
type Results struct {
	// GlobalScalarID maps a scalar global's symbol to its stable index
	// into the VM's global-scalar vector.
	GlobalScalarID map[symtab.Symbol]int
	// GlobalArrayID maps an array global's symbol to its stable index
	// into the VM's global-array table.
	GlobalArrayID map[symtab.Symbol]int

	// StringConsts is the deduplicated pool of string and regex literal
	// bytes encountered anywhere in the program, in first-seen order.
	StringConsts []string
	stringIndex  map[string]int

	// FuncOrder preserves declaration order, reused by the code
	// generator for deterministic chunk layout and --debug output.
	FuncOrder []symtab.Symbol
}

func newResults() *Results {
	return &Results{
		GlobalScalarID: make(map[symtab.Symbol]int),
		GlobalArrayID:  make(map[symtab.Symbol]int),
		stringIndex:    make(map[string]int),
	}
}

// InternString adds s to the constant pool if not already present and
// returns its index.
func (r *Results) InternString(s string) int {
	if idx, ok := r.stringIndex[s]; ok {
		return idx
	}
	idx := len(r.StringConsts)
	r.StringConsts = append(r.StringConsts, s)
	r.stringIndex[s] = idx
	return idx
}

func (r *Results) scalarID(sym symtab.Symbol) int {
	if id, ok := r.GlobalScalarID[sym]; ok {
		return id
	}
	id := len(r.GlobalScalarID)
	r.GlobalScalarID[sym] = id
	return id
}

func (r *Results) arrayID(sym symtab.Symbol) int {
	if id, ok := r.GlobalArrayID[sym]; ok {
		return id
	}
	id := len(r.GlobalArrayID)
	r.GlobalArrayID[sym] = id
	return id
}

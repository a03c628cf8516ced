package bytecode

import "github.com/rawklang/rawk/internal/ast"

// FuncInfo is one user-defined function's compiled form.
type FuncInfo struct {
	Name       string
	Chunk      *Chunk
	ParamKinds []ast.ArgKind
}

// Rule is one pattern/action item, lowered to bytecode. Pattern is nil for
// an unconditional `{ ... }` action; Action is always non-nil.
type Rule struct {
	Pattern *Chunk // evaluates to a var-stack truthiness check, nil = always run
	Action  *Chunk
}

// Program is the code generator's output: the VmProgram of spec §6's
// `compile(program_ast, analysis) -> VmProgram`. It is everything Run
// needs and nothing an input source or output sink does.
type Program struct {
	Functions   []*FuncInfo
	FuncIndex   map[string]int
	Begin       []*Chunk
	End         []*Chunk
	Rules       []*Rule
	NumGlobalScalars int
	NumGlobalArrays  int
	GlobalScalarNames []string // index-aligned with NumGlobalScalars; the VM matches these against special-variable names and CLI assignments
	GlobalArrayNames  []string
}

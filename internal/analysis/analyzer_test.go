package analysis

import (
	"testing"

	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/parser"
	"github.com/rawklang/rawk/internal/symtab"
)

func mustAnalyze(t *testing.T, src string) (*ast.Program, *Results, *symtab.Table) {
	t.Helper()
	syms := symtab.New()
	prog, err := parser.Parse(src, syms)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := Analyze(prog)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return prog, res, syms
}

func TestGlobalArrayClassification(t *testing.T) {
	_, res, _ := mustAnalyze(t, `{ seen[$0]++ } END { for (k in seen) print k }`)
	if len(res.GlobalArrayID) != 1 {
		t.Fatalf("expected exactly one global array, got %d", len(res.GlobalArrayID))
	}
}

func TestScalarArrayConflictIsTypeError(t *testing.T) {
	syms := symtab.New()
	prog, err := parser.Parse(`{ x = 1; x[1] = 2 }`, syms)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Analyze(prog); err == nil {
		t.Fatal("expected a TypeError for scalar/array conflict, got nil")
	}
}

func TestParamKindInferredFromCallSite(t *testing.T) {
	prog, _, syms := mustAnalyze(t, `
function fill(a) { a[1] = "x" }
BEGIN { fill(globalArr) }
`)
	sym, ok := syms.Lookup("fill")
	if !ok {
		t.Fatal("function fill not interned")
	}
	fn := prog.Functions[sym]
	if fn.ParamKinds[0] != ast.Array {
		t.Errorf("fill's parameter a should infer Array, got %v", fn.ParamKinds[0])
	}
}

func TestUnusedParamDefaultsToScalar(t *testing.T) {
	prog, _, syms := mustAnalyze(t, `
function noop(x) { return 1 }
BEGIN { noop(1) }
`)
	sym, ok := syms.Lookup("noop")
	if !ok {
		t.Fatal("function noop not interned")
	}
	fn := prog.Functions[sym]
	if fn.ParamKinds[0] != ast.Scalar {
		t.Errorf("unused parameter should default to Scalar, got %v", fn.ParamKinds[0])
	}
}

func TestStringConstantsAreDeduplicated(t *testing.T) {
	_, res, _ := mustAnalyze(t, `BEGIN { print "hi"; print "hi"; print "bye" }`)
	if len(res.StringConsts) != 2 {
		t.Fatalf("expected 2 distinct string constants, got %d: %v", len(res.StringConsts), res.StringConsts)
	}
}

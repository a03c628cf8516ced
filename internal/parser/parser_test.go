package parser

import (
	"testing"

	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/symtab"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	syms := symtab.New()
	prog, err := Parse(src, syms)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseBeginEndAndRule(t *testing.T) {
	prog := mustParse(t, `
BEGIN { x = 1 }
$0 ~ /foo/ { print }
END { print "done" }
`)
	if len(prog.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(prog.Items))
	}
	if prog.Items[0].Kind != ast.ItemBegin {
		t.Errorf("item 0 kind = %v, want ItemBegin", prog.Items[0].Kind)
	}
	if prog.Items[1].Kind != ast.ItemRule {
		t.Errorf("item 1 kind = %v, want ItemRule", prog.Items[1].Kind)
	}
	if prog.Items[1].Pattern == nil {
		t.Error("item 1 should have a non-nil pattern")
	}
	if prog.Items[2].Kind != ast.ItemEnd {
		t.Errorf("item 2 kind = %v, want ItemEnd", prog.Items[2].Kind)
	}
}

func TestParseUnconditionalAction(t *testing.T) {
	prog := mustParse(t, `{ print $0 }`)
	if len(prog.Items) != 1 {
		t.Fatalf("got %d items", len(prog.Items))
	}
	if prog.Items[0].Pattern != nil {
		t.Error("unconditional action should have a nil pattern")
	}
}

func TestParseExpressionOnlyRuleImpliesPrint(t *testing.T) {
	prog := mustParse(t, `NF > 2`)
	if len(prog.Items) != 1 {
		t.Fatalf("got %d items", len(prog.Items))
	}
	if prog.Items[0].Pattern == nil {
		t.Fatal("expected a non-nil pattern")
	}
	if prog.Items[0].Action == nil || len(prog.Items[0].Action.List) != 1 {
		t.Fatal("expected an implicit one-statement print action")
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := mustParse(t, `
function add(a, b) { return a + b }
BEGIN { print add(1, 2) }
`)
	syms := symtab.New()
	_ = syms
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	if len(prog.FuncOrder) != 1 {
		t.Fatalf("got %d FuncOrder entries, want 1", len(prog.FuncOrder))
	}
	fn := prog.Functions[prog.FuncOrder[0]]
	if len(fn.Params) != 2 {
		t.Errorf("got %d params, want 2", len(fn.Params))
	}
}

func TestParseUnterminatedStringIsError(t *testing.T) {
	syms := symtab.New()
	if _, err := Parse(`BEGIN { x = "unterminated }`, syms); err == nil {
		t.Fatal("expected a lex error for an unterminated string")
	}
}

func TestParseUnexpectedTokenIsError(t *testing.T) {
	syms := symtab.New()
	if _, err := Parse(`BEGIN { x = * 1 }`, syms); err == nil {
		t.Fatal("expected a parse error for a leading binary operator")
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := mustParse(t, `BEGIN { x = 1 + 2 * 3 }`)
	item := prog.Items[0]
	stmt := item.Action.List[0]
	exprStmt, ok := stmt.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExprStmt", stmt)
	}
	assign, ok := exprStmt.X.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignExpr", exprStmt.X)
	}
	bin, ok := assign.Rhs.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("rhs is %T, want *ast.BinaryExpr", assign.Rhs)
	}
	if bin.Op != ast.OpAdd {
		t.Fatalf("top-level op = %v, want OpAdd (multiplication should bind tighter)", bin.Op)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("right operand is %T, want *ast.BinaryExpr (2 * 3)", bin.Right)
	}
}

func TestParseGetlineVariants(t *testing.T) {
	prog := mustParse(t, `{ getline; getline line }`)
	if len(prog.Items[0].Action.List) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Items[0].Action.List))
	}
}

func TestParseArrayIndexAndDelete(t *testing.T) {
	prog := mustParse(t, `BEGIN { a[1] = 2; delete a[1] }`)
	if len(prog.Items[0].Action.List) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Items[0].Action.List))
	}
}

package analysis

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/symtab"
)

// Analyze runs both passes of spec §4.4's whole-program analysis over
// prog and returns the finalized Results the code generator consumes.
// Any parameter or global still Unknown once the fixed point is reached
// is proved unused and defaults to Scalar, per spec §4.4.
func Analyze(prog *ast.Program) (*Results, error) {
	p := newPass(prog)

	if err := p.runFunctionPass(); err != nil {
		return nil, err
	}
	if err := p.runInferencePass(); err != nil {
		return nil, err
	}

	for _, name := range prog.FuncOrder {
		fn := prog.Functions[name]
		for i, k := range fn.ParamKinds {
			if k == ast.Unknown {
				fn.ParamKinds[i] = ast.Scalar
			}
		}
	}

	res := newResults()
	res.FuncOrder = prog.FuncOrder

	assignGlobalIDs(prog, p, res)
	internConstants(prog, res)

	return res, nil
}

// assignGlobalIDs walks every identifier reference in the program once
// more, in source order, to assign stable scalar/array slot indices to
// every global name. Names never resolved to a kind by either pass (dead
// globals) default to Scalar, matching the parameter default above.
func assignGlobalIDs(prog *ast.Program, p *pass, res *Results) {
	seen := make(map[symtab.Symbol]bool)
	record := func(fn *ast.Function, id *ast.Ident) {
		if id.IsParam && fn != nil {
			return // parameters live in the function's own frame, not globals
		}
		if seen[id.Name] {
			return
		}
		seen[id.Name] = true
		kind := p.kinds.globalKind(id.Name)
		if kind == ast.Array {
			res.arrayID(id.Name)
		} else {
			res.scalarID(id.Name)
		}
	}

	var walkStmt func(fn *ast.Function, s ast.Stmt)
	var walkExpr func(fn *ast.Function, e ast.Expr)

	walkExpr = func(fn *ast.Function, e ast.Expr) {
		switch n := e.(type) {
		case nil:
		case *ast.Ident:
			record(fn, n)
		case *ast.ColumnExpr:
			walkExpr(fn, n.Index)
		case *ast.NextLineExpr:
			walkExpr(fn, n.Target)
		case *ast.BinaryExpr:
			walkExpr(fn, n.Left)
			walkExpr(fn, n.Right)
		case *ast.LogicalExpr:
			walkExpr(fn, n.Left)
			walkExpr(fn, n.Right)
		case *ast.UnaryExpr:
			walkExpr(fn, n.X)
		case *ast.ConcatExpr:
			for _, part := range n.Parts {
				walkExpr(fn, part)
			}
		case *ast.TernaryExpr:
			walkExpr(fn, n.Cond)
			walkExpr(fn, n.Then)
			walkExpr(fn, n.Else)
		case *ast.AssignExpr:
			walkExpr(fn, n.Rhs)
			walkExpr(fn, n.Lhs)
		case *ast.IndexExpr:
			record(fn, n.Array)
			for _, idx := range n.Indices {
				walkExpr(fn, idx)
			}
		case *ast.ArrayAssignExpr:
			record(fn, n.Array)
			for _, idx := range n.Indices {
				walkExpr(fn, idx)
			}
			walkExpr(fn, n.Rhs)
		case *ast.InExpr:
			record(fn, n.Array)
			for _, idx := range n.Indices {
				walkExpr(fn, idx)
			}
		case *ast.CallExpr:
			for _, a := range n.Args {
				walkExpr(fn, a)
			}
		case *ast.BuiltinCallExpr:
			for _, a := range n.Args {
				walkExpr(fn, a)
			}
			if n.ArrayArg != nil {
				record(fn, n.ArrayArg)
			}
		case *ast.SubExpr:
			walkExpr(fn, n.Regex)
			walkExpr(fn, n.Repl)
			walkExpr(fn, n.Target)
		}
	}

	walkStmt = func(fn *ast.Function, s ast.Stmt) {
		switch n := s.(type) {
		case nil:
		case *ast.BlockStmt:
			for _, st := range n.List {
				walkStmt(fn, st)
			}
		case *ast.ExprStmt:
			walkExpr(fn, n.X)
		case *ast.PrintStmt:
			for _, a := range n.Args {
				walkExpr(fn, a)
			}
		case *ast.PrintfStmt:
			walkExpr(fn, n.Format)
			for _, a := range n.Args {
				walkExpr(fn, a)
			}
		case *ast.IfStmt:
			walkExpr(fn, n.Cond)
			walkStmt(fn, n.Then)
			walkStmt(fn, n.Else)
		case *ast.WhileStmt:
			walkStmt(fn, n.Init)
			walkExpr(fn, n.Cond)
			walkStmt(fn, n.Post)
			walkStmt(fn, n.Body)
		case *ast.ForInStmt:
			record(fn, n.Var)
			record(fn, n.Array)
			walkStmt(fn, n.Body)
		case *ast.ReturnStmt:
			walkExpr(fn, n.Value)
		case *ast.ExitStmt:
			walkExpr(fn, n.Code)
		case *ast.DeleteStmt:
			record(fn, n.Array)
			for _, idx := range n.Indices {
				walkExpr(fn, idx)
			}
		}
	}

	for _, name := range prog.FuncOrder {
		fn := prog.Functions[name]
		walkStmt(fn, fn.Body)
	}
	for _, item := range prog.Items {
		walkExpr(nil, item.Pattern)
		walkStmt(nil, item.Action)
	}
}

// internConstants pools every string and regex literal's text in source
// order, matching the order assignGlobalIDs assigns global slots in, so
// --debug dumps are stable across runs of the same source.
func internConstants(prog *ast.Program, res *Results) {
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case nil:
		case *ast.StringLit:
			res.InternString(n.Value)
		case *ast.RegexLit:
			res.InternString(n.Pattern)
		case *ast.ColumnExpr:
			walkExpr(n.Index)
		case *ast.NextLineExpr:
			walkExpr(n.Target)
		case *ast.BinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.LogicalExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpr:
			walkExpr(n.X)
		case *ast.ConcatExpr:
			for _, part := range n.Parts {
				walkExpr(part)
			}
		case *ast.TernaryExpr:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.AssignExpr:
			walkExpr(n.Rhs)
			walkExpr(n.Lhs)
		case *ast.IndexExpr:
			for _, idx := range n.Indices {
				walkExpr(idx)
			}
		case *ast.ArrayAssignExpr:
			for _, idx := range n.Indices {
				walkExpr(idx)
			}
			walkExpr(n.Rhs)
		case *ast.InExpr:
			for _, idx := range n.Indices {
				walkExpr(idx)
			}
		case *ast.CallExpr:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.BuiltinCallExpr:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.SubExpr:
			walkExpr(n.Regex)
			walkExpr(n.Repl)
			walkExpr(n.Target)
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case nil:
		case *ast.BlockStmt:
			for _, st := range n.List {
				walkStmt(st)
			}
		case *ast.ExprStmt:
			walkExpr(n.X)
		case *ast.PrintStmt:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.PrintfStmt:
			walkExpr(n.Format)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.IfStmt:
			walkExpr(n.Cond)
			walkStmt(n.Then)
			walkStmt(n.Else)
		case *ast.WhileStmt:
			walkStmt(n.Init)
			walkExpr(n.Cond)
			walkStmt(n.Post)
			walkStmt(n.Body)
		case *ast.ForInStmt:
			walkStmt(n.Body)
		case *ast.ReturnStmt:
			walkExpr(n.Value)
		case *ast.ExitStmt:
			walkExpr(n.Code)
		case *ast.DeleteStmt:
			for _, idx := range n.Indices {
				walkExpr(idx)
			}
		}
	}

	for _, name := range prog.FuncOrder {
		walkStmt(prog.Functions[name].Body)
	}
	for _, item := range prog.Items {
		walkExpr(item.Pattern)
		walkStmt(item.Action)
	}
}

package analysis

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/symtab"
	"github.com/rawklang/rawk/internal/token"
)

// callSite records one call expression found during the function pass:
// which function it occurs in (MainFunc for top-level code), the callee,
// and the raw argument expressions pass 2 needs to inspect.
type callSite struct {
	caller symtab.Symbol
	callee symtab.Symbol
	args   []ast.Expr
	pos    token.Position
}

// pass holds all mutable state shared by both analysis passes.
type pass struct {
	prog     *ast.Program
	kinds    *kindTable
	varTypes map[symtab.Symbol]ast.ScalarType
	calls    []*callSite
}

func newPass(prog *ast.Program) *pass {
	return &pass{
		prog:     prog,
		kinds:    newKindTable(),
		varTypes: make(map[symtab.Symbol]ast.ScalarType),
	}
}

// runFunctionPass is spec §4.4 pass 1: classify every name use as scalar
// or array within its enclosing function (or top level), compute a best-
// effort ScalarType hint for every expression, and record every call
// site for pass 2.
func (p *pass) runFunctionPass() error {
	for _, name := range p.prog.FuncOrder {
		fn := p.prog.Functions[name]
		for i := range fn.ParamKinds {
			fn.ParamKinds[i] = ast.Unknown
		}
		if err := p.walkStmt(fn, fn.Body); err != nil {
			return err
		}
	}
	for _, item := range p.prog.Items {
		if item.Pattern != nil {
			if err := p.walkExpr(nil, item.Pattern); err != nil {
				return err
			}
		}
		if err := p.walkStmt(nil, item.Action); err != nil {
			return err
		}
	}
	return nil
}

func callerSym(fn *ast.Function) symtab.Symbol {
	if fn == nil {
		return MainFunc
	}
	return fn.Name
}

// classifyIdent marks id as used with the given kind, enforcing the
// "never both scalar and array" invariant (spec §3, §4.4). Reports
// whether this call moved a kind from Unknown to concrete, which pass 2
// uses to decide whether to keep iterating.
func (p *pass) classifyIdent(fn *ast.Function, id *ast.Ident, kind ast.ArgKind) (bool, error) {
	id.Kind = kind
	if id.IsParam && fn != nil {
		cur := fn.ParamKinds[id.ParamIndex]
		if cur == kind {
			return false, nil
		}
		if cur == ast.Unknown {
			fn.ParamKinds[id.ParamIndex] = kind
			return true, nil
		}
		return false, errf(id.Pos(), "parameter used as both scalar and array")
	}
	changed, ok := p.kinds.setGlobalKind(id.Name, kind)
	if !ok {
		return false, errf(id.Pos(), "variable used as both scalar and array")
	}
	return changed, nil
}

// funcOf resolves a call-edge "caller" symbol back to its *ast.Function,
// or nil for MainFunc.
func (p *pass) funcOf(caller symtab.Symbol) *ast.Function {
	if caller == MainFunc {
		return nil
	}
	return p.prog.Functions[caller]
}

func (p *pass) walkStmt(fn *ast.Function, s ast.Stmt) error {
	switch n := s.(type) {
	case nil:
		return nil
	case *ast.BlockStmt:
		for _, st := range n.List {
			if err := p.walkStmt(fn, st); err != nil {
				return err
			}
		}
	case *ast.ExprStmt:
		return p.walkExpr(fn, n.X)
	case *ast.PrintStmt:
		for _, a := range n.Args {
			if err := p.walkExpr(fn, a); err != nil {
				return err
			}
		}
	case *ast.PrintfStmt:
		if err := p.walkExpr(fn, n.Format); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := p.walkExpr(fn, a); err != nil {
				return err
			}
		}
	case *ast.IfStmt:
		if err := p.walkExpr(fn, n.Cond); err != nil {
			return err
		}
		if err := p.walkStmt(fn, n.Then); err != nil {
			return err
		}
		return p.walkStmt(fn, n.Else)
	case *ast.WhileStmt:
		if err := p.walkStmt(fn, n.Init); err != nil {
			return err
		}
		if n.Cond != nil {
			if err := p.walkExpr(fn, n.Cond); err != nil {
				return err
			}
		}
		if err := p.walkStmt(fn, n.Post); err != nil {
			return err
		}
		return p.walkStmt(fn, n.Body)
	case *ast.ForInStmt:
		if _, err := p.classifyIdent(fn, n.Var, ast.Scalar); err != nil {
			return err
		}
		if _, err := p.classifyIdent(fn, n.Array, ast.Array); err != nil {
			return err
		}
		return p.walkStmt(fn, n.Body)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.NextStmt:
		return nil
	case *ast.ReturnStmt:
		if n.Value != nil {
			return p.walkExpr(fn, n.Value)
		}
	case *ast.ExitStmt:
		if n.Code != nil {
			return p.walkExpr(fn, n.Code)
		}
	case *ast.DeleteStmt:
		if _, err := p.classifyIdent(fn, n.Array, ast.Array); err != nil {
			return err
		}
		for _, idx := range n.Indices {
			if err := p.walkExpr(fn, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkExpr computes a ScalarType for n and returns it via n.SetType,
// classifying any Ident it touches along the way.
func (p *pass) walkExpr(fn *ast.Function, e ast.Expr) error {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.NumberLit:
		n.SetType(ast.TypeNumber)
	case *ast.StringLit:
		n.SetType(ast.TypeString)
	case *ast.RegexLit:
		n.SetType(ast.TypeNumber)
	case *ast.Ident:
		if _, err := p.classifyIdent(fn, n, ast.Scalar); err != nil {
			return err
		}
		n.SetType(p.varTypes[n.Name])
	case *ast.ColumnExpr:
		if err := p.walkExpr(fn, n.Index); err != nil {
			return err
		}
		n.SetType(ast.TypeString)
	case *ast.NextLineExpr:
		if n.Target != nil {
			if err := p.walkExpr(fn, n.Target); err != nil {
				return err
			}
		}
		n.SetType(ast.TypeNumber)
	case *ast.BinaryExpr:
		if err := p.walkExpr(fn, n.Left); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Right); err != nil {
			return err
		}
		switch n.Op {
		case ast.OpMatch, ast.OpNotMatch, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
			n.SetType(ast.TypeNumber)
		default:
			n.SetType(ast.TypeNumber)
		}
	case *ast.LogicalExpr:
		if err := p.walkExpr(fn, n.Left); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Right); err != nil {
			return err
		}
		n.SetType(ast.TypeNumber)
	case *ast.UnaryExpr:
		if err := p.walkExpr(fn, n.X); err != nil {
			return err
		}
		if n.Op == ast.OpNot {
			n.SetType(ast.TypeNumber)
		} else {
			n.SetType(ast.TypeNumber)
		}
	case *ast.ConcatExpr:
		for _, part := range n.Parts {
			if err := p.walkExpr(fn, part); err != nil {
				return err
			}
		}
		n.SetType(ast.TypeString)
	case *ast.TernaryExpr:
		if err := p.walkExpr(fn, n.Cond); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Then); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Else); err != nil {
			return err
		}
		n.SetType(n.Then.Type().Meet(n.Else.Type()))
	case *ast.AssignExpr:
		if err := p.walkExpr(fn, n.Rhs); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Lhs); err != nil {
			return err
		}
		t := n.Rhs.Type()
		if id, ok := n.Lhs.(*ast.Ident); ok {
			p.varTypes[id.Name] = p.varTypes[id.Name].Meet(t)
		}
		n.SetType(t)
	case *ast.IndexExpr:
		if _, err := p.classifyIdent(fn, n.Array, ast.Array); err != nil {
			return err
		}
		for _, idx := range n.Indices {
			if err := p.walkExpr(fn, idx); err != nil {
				return err
			}
		}
		n.SetType(p.varTypes[n.Array.Name])
	case *ast.ArrayAssignExpr:
		if _, err := p.classifyIdent(fn, n.Array, ast.Array); err != nil {
			return err
		}
		for _, idx := range n.Indices {
			if err := p.walkExpr(fn, idx); err != nil {
				return err
			}
		}
		if err := p.walkExpr(fn, n.Rhs); err != nil {
			return err
		}
		n.SetType(n.Rhs.Type())
	case *ast.InExpr:
		if _, err := p.classifyIdent(fn, n.Array, ast.Array); err != nil {
			return err
		}
		for _, idx := range n.Indices {
			if err := p.walkExpr(fn, idx); err != nil {
				return err
			}
		}
		n.SetType(ast.TypeNumber)
	case *ast.CallExpr:
		for _, a := range n.Args {
			// A bare identifier argument stays Unknown here; pass 2 settles
			// its kind against the callee's parameter.
			if _, ok := a.(*ast.Ident); ok {
				continue
			}
			if err := p.walkExpr(fn, a); err != nil {
				return err
			}
		}
		p.calls = append(p.calls, &callSite{caller: callerSym(fn), callee: n.Callee, args: n.Args, pos: n.Pos()})
		n.SetType(ast.TypeVariable)
	case *ast.BuiltinCallExpr:
		for _, a := range n.Args {
			if err := p.walkExpr(fn, a); err != nil {
				return err
			}
		}
		if n.ArrayArg != nil {
			if _, err := p.classifyIdent(fn, n.ArrayArg, ast.Array); err != nil {
				return err
			}
		}
		n.SetType(builtinResultType(n.Func))
	case *ast.SubExpr:
		if err := p.walkExpr(fn, n.Regex); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Repl); err != nil {
			return err
		}
		if err := p.walkExpr(fn, n.Target); err != nil {
			return err
		}
		n.SetType(ast.TypeNumber)
	}
	return nil
}

func builtinResultType(f ast.BuiltinFunc) ast.ScalarType {
	switch f {
	case ast.BuiltinSubstr, ast.BuiltinSprintf, ast.BuiltinTolower, ast.BuiltinToupper:
		return ast.TypeString
	default:
		return ast.TypeNumber
	}
}

package bytecode

import (
	"fmt"

	"github.com/rawklang/rawk/internal/analysis"
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/symtab"
)

// Compiler lowers an analysed *ast.Program to a *Program of bytecode
// chunks (spec §4.5).
type Compiler struct {
	prog *ast.Program
	res  *analysis.Results
	syms *symtab.Table

	out     *Program
	funcSym map[symtab.Symbol]int
	cur     *Chunk
	fn      *ast.Function // nil at top level (BEGIN/END/pattern/action)

	loopStack []*loopCtx
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

// Compile runs the code generator over prog using res, the finalised
// analysis.Results for prog, and returns the executable Program.
func Compile(prog *ast.Program, res *analysis.Results, syms *symtab.Table) (*Program, error) {
	c := &Compiler{
		prog:    prog,
		res:     res,
		syms:    syms,
		out:     &Program{FuncIndex: make(map[string]int)},
		funcSym: make(map[symtab.Symbol]int),
	}
	c.out.NumGlobalScalars = len(res.GlobalScalarID)
	c.out.NumGlobalArrays = len(res.GlobalArrayID)
	c.out.GlobalScalarNames = make([]string, len(res.GlobalScalarID))
	for sym, id := range res.GlobalScalarID {
		c.out.GlobalScalarNames[id] = syms.Resolve(sym)
	}
	c.out.GlobalArrayNames = make([]string, len(res.GlobalArrayID))
	for sym, id := range res.GlobalArrayID {
		c.out.GlobalArrayNames[id] = syms.Resolve(sym)
	}

	for i, sym := range prog.FuncOrder {
		name := syms.Resolve(sym)
		c.funcSym[sym] = i
		c.out.FuncIndex[name] = i
		c.out.Functions = append(c.out.Functions, &FuncInfo{Name: name})
	}
	for i, sym := range prog.FuncOrder {
		fn := prog.Functions[sym]
		chunk, err := c.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		c.out.Functions[i].Chunk = chunk
		c.out.Functions[i].ParamKinds = fn.ParamKinds
	}

	for _, item := range prog.Items {
		switch item.Kind {
		case ast.ItemBegin:
			chunk, err := c.compileBlock("begin", item.Action)
			if err != nil {
				return nil, err
			}
			c.out.Begin = append(c.out.Begin, chunk)
		case ast.ItemEnd:
			chunk, err := c.compileBlock("end", item.Action)
			if err != nil {
				return nil, err
			}
			c.out.End = append(c.out.End, chunk)
		case ast.ItemRule:
			rule := &Rule{}
			if item.Pattern != nil {
				pat := NewChunk("pattern")
				c.cur = pat
				c.fn = nil
				if err := c.compileExpr(item.Pattern); err != nil {
					return nil, err
				}
				c.cur.Emit(OpRet, 0, 0, item.Pattern.Pos().Line)
				rule.Pattern = pat
			}
			action, err := c.compileBlock("action", item.Action)
			if err != nil {
				return nil, err
			}
			rule.Action = action
			c.out.Rules = append(c.out.Rules, rule)
		}
	}

	return c.out, nil
}

func (c *Compiler) compileFunction(fn *ast.Function) (*Chunk, error) {
	chunk := NewChunk(c.syms.Resolve(fn.Name))
	c.cur = chunk
	c.fn = fn
	if err := c.compileStmt(fn.Body); err != nil {
		return nil, err
	}
	c.ensureReturn(fn.Body.Pos().Line)
	c.fn = nil
	return chunk, nil
}

func (c *Compiler) compileBlock(name string, body *ast.BlockStmt) (*Chunk, error) {
	chunk := NewChunk(name)
	c.cur = chunk
	c.fn = nil
	if body != nil {
		if err := c.compileStmt(body); err != nil {
			return nil, err
		}
	}
	return chunk, nil
}

func (c *Compiler) ensureReturn(line int) {
	if len(c.cur.Code) > 0 && c.cur.Code[len(c.cur.Code)-1].Op == OpRet {
		return
	}
	c.cur.Emit(OpPushNum, c.cur.AddNumConst(0), 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)
	c.cur.Emit(OpRet, 0, 0, line)
}

func (c *Compiler) errf(pos ast.Expr, format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ---- statements ----

func (c *Compiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case nil:
		return nil
	case *ast.BlockStmt:
		for _, st := range n.List {
			if err := c.compileStmt(st); err != nil {
				return err
			}
		}
	case *ast.ExprStmt:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
	case *ast.PrintStmt:
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.cur.Emit(OpPrint, 0, len(n.Args), n.Pos().Line)
	case *ast.PrintfStmt:
		if err := c.compileExpr(n.Format); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.cur.Emit(OpPrintf, 0, len(n.Args)+1, n.Pos().Line)
	case *ast.IfStmt:
		return c.compileIf(n)
	case *ast.WhileStmt:
		return c.compileWhile(n)
	case *ast.ForInStmt:
		return c.compileForIn(n)
	case *ast.BreakStmt:
		if len(c.loopStack) == 0 {
			return fmt.Errorf("%d: break outside loop", n.Pos().Line)
		}
		loop := c.loopStack[len(c.loopStack)-1]
		loop.breakJumps = append(loop.breakJumps, c.cur.Emit(OpJump, -1, 0, n.Pos().Line))
	case *ast.ContinueStmt:
		if len(c.loopStack) == 0 {
			return fmt.Errorf("%d: continue outside loop", n.Pos().Line)
		}
		loop := c.loopStack[len(c.loopStack)-1]
		loop.continueJumps = append(loop.continueJumps, c.cur.Emit(OpJump, -1, 0, n.Pos().Line))
	case *ast.NextStmt:
		c.cur.Emit(OpNext, 0, 0, n.Pos().Line)
	case *ast.ExitStmt:
		if n.Code != nil {
			if err := c.compileExpr(n.Code); err != nil {
				return err
			}
			c.cur.Emit(OpVarToNum, 0, 0, n.Pos().Line)
			c.cur.Emit(OpExit, 1, 0, n.Pos().Line)
		} else {
			c.cur.Emit(OpExit, 0, 0, n.Pos().Line)
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			if err := c.compileExpr(n.Value); err != nil {
				return err
			}
		} else {
			c.cur.Emit(OpPushNum, c.cur.AddNumConst(0), 0, n.Pos().Line)
			c.cur.Emit(OpNumToVar, 0, 0, n.Pos().Line)
		}
		c.cur.Emit(OpRet, 0, 0, n.Pos().Line)
	case *ast.DeleteStmt:
		return c.compileDelete(n)
	default:
		return fmt.Errorf("bytecode: unhandled statement %T", n)
	}
	return nil
}

func (c *Compiler) compileIf(n *ast.IfStmt) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	elseJump := c.cur.Emit(OpJumpIfFalse, -1, 0, n.Pos().Line)
	c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
	if err := c.compileStmt(n.Then); err != nil {
		return err
	}
	doneJump := c.cur.Emit(OpJump, -1, 0, n.Pos().Line)
	c.cur.Patch(elseJump, c.cur.Here())
	c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
	if n.Else != nil {
		if err := c.compileStmt(n.Else); err != nil {
			return err
		}
	}
	c.cur.Patch(doneJump, c.cur.Here())
	return nil
}

// compileWhile handles `while`, `do...while`, and the C-style `for`, all
// sharing ast.WhileStmt (spec §4.3).
func (c *Compiler) compileWhile(n *ast.WhileStmt) error {
	if n.Init != nil {
		if err := c.compileStmt(n.Init); err != nil {
			return err
		}
	}
	loop := &loopCtx{}
	c.loopStack = append(c.loopStack, loop)

	top := c.cur.Here()
	var exitJump int
	hasExit := false
	if !n.PostCondition && n.Cond != nil {
		if err := c.compileExpr(n.Cond); err != nil {
			return err
		}
		exitJump = c.cur.Emit(OpJumpIfFalse, -1, 0, n.Pos().Line)
		hasExit = true
		c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
	}

	if err := c.compileStmt(n.Body); err != nil {
		return err
	}

	continueTarget := c.cur.Here()
	for _, idx := range loop.continueJumps {
		c.cur.Patch(idx, continueTarget)
	}
	if n.Post != nil {
		if err := c.compileStmt(n.Post); err != nil {
			return err
		}
	}

	if n.PostCondition && n.Cond != nil {
		if err := c.compileExpr(n.Cond); err != nil {
			return err
		}
		exitJump = c.cur.Emit(OpJumpIfFalse, -1, 0, n.Pos().Line)
		hasExit = true
		c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
		c.cur.Emit(OpJump, top, 0, n.Pos().Line)
	} else {
		c.cur.Emit(OpJump, top, 0, n.Pos().Line)
	}

	if hasExit {
		c.cur.Patch(exitJump, c.cur.Here())
		c.cur.Emit(OpPop, 0, 0, n.Pos().Line)
	}
	for _, idx := range loop.breakJumps {
		c.cur.Patch(idx, c.cur.Here())
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	return nil
}

func (c *Compiler) compileForIn(n *ast.ForInStmt) error {
	line := n.Pos().Line
	if global, ok := c.globalArrayID(n.Array); ok {
		c.cur.Emit(OpIterBeginGlobal, global, 0, line)
	} else {
		c.cur.Emit(OpIterBeginLocal, n.Array.ParamIndex, 0, line)
	}

	loop := &loopCtx{}
	c.loopStack = append(c.loopStack, loop)

	top := c.cur.Here()
	exitJump := c.cur.Emit(OpIterNext, -1, 0, line)
	if err := c.storeScalar(n.Var, line); err != nil {
		return err
	}
	if err := c.compileStmt(n.Body); err != nil {
		return err
	}
	continueTarget := c.cur.Here()
	for _, idx := range loop.continueJumps {
		c.cur.Patch(idx, continueTarget)
	}
	c.cur.Emit(OpJump, top, 0, line)
	c.cur.Patch(exitJump, c.cur.Here())
	for _, idx := range loop.breakJumps {
		c.cur.Patch(idx, c.cur.Here())
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	return nil
}

func (c *Compiler) compileDelete(n *ast.DeleteStmt) error {
	line := n.Pos().Line
	for _, idx := range n.Indices {
		if err := c.compileExpr(idx); err != nil {
			return err
		}
	}
	if global, ok := c.globalArrayID(n.Array); ok {
		c.cur.Emit(OpArrayDeleteGlobal, global, len(n.Indices), line)
	} else {
		c.cur.Emit(OpArrayDeleteLocal, n.Array.ParamIndex, len(n.Indices), line)
	}
	return nil
}

// ---- expressions ----

func (c *Compiler) compileExpr(e ast.Expr) error {
	line := e.Pos().Line
	switch n := e.(type) {
	case *ast.NumberLit:
		c.cur.Emit(OpPushNum, c.cur.AddNumConst(n.Value), 0, line)
		c.cur.Emit(OpNumToVar, 0, 0, line)
	case *ast.StringLit:
		c.cur.Emit(OpPushStr, c.cur.AddStrConst(n.Value), 0, line)
		c.cur.Emit(OpStrToVar, 0, 0, line)
	case *ast.RegexLit:
		// A bare /re/ pattern used as a standalone boolean expression
		// matches against $0.
		return c.compileRegexMatchAgainstField0(n, line)
	case *ast.Ident:
		return c.loadScalar(n, line)
	case *ast.ColumnExpr:
		if err := c.compileExpr(n.Index); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpGetField, 0, 0, line)
	case *ast.NextLineExpr:
		return c.compileGetline(n, line)
	case *ast.BinaryExpr:
		return c.compileBinary(n, line)
	case *ast.LogicalExpr:
		return c.compileLogical(n, line)
	case *ast.UnaryExpr:
		return c.compileUnary(n, line)
	case *ast.ConcatExpr:
		for _, part := range n.Parts {
			if err := c.compileExpr(part); err != nil {
				return err
			}
			c.cur.Emit(OpVarToStr, 0, 0, line)
		}
		c.cur.Emit(OpConcat, 0, len(n.Parts), line)
		c.cur.Emit(OpStrToVar, 0, 0, line)
	case *ast.TernaryExpr:
		return c.compileTernary(n, line)
	case *ast.AssignExpr:
		return c.compileAssign(n, line)
	case *ast.IndexExpr:
		return c.compileIndexGet(n, line)
	case *ast.ArrayAssignExpr:
		return c.compileArrayAssign(n, line)
	case *ast.InExpr:
		return c.compileIn(n, line)
	case *ast.CallExpr:
		return c.compileCall(n, line)
	case *ast.BuiltinCallExpr:
		return c.compileBuiltin(n, line)
	case *ast.SubExpr:
		return c.compileSub(n, line)
	default:
		return fmt.Errorf("bytecode: unhandled expression %T", n)
	}
	return nil
}

func (c *Compiler) compileRegexMatchAgainstField0(n *ast.RegexLit, line int) error {
	c.cur.Emit(OpPushNum, c.cur.AddNumConst(0), 0, line)
	c.cur.Emit(OpGetField, 0, 0, line)
	c.cur.Emit(OpVarToStr, 0, 0, line)
	c.cur.Emit(OpPushStr, c.cur.AddStrConst(n.Pattern), 0, line)
	c.cur.Emit(OpStrToVar, 0, 0, line)
	c.cur.Emit(OpVarToStr, 0, 0, line)
	c.cur.Emit(OpMatch, 0, 0, line)
	return nil
}

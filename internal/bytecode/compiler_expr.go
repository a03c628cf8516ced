package bytecode

import (
	"fmt"

	"github.com/rawklang/rawk/internal/ast"
)

// ---- scalar/array identity resolution ----

// globalScalarID reports id's slot in the VM's global-scalar vector, if
// id names a global scalar (as opposed to a function parameter or a
// global array).
func (c *Compiler) globalScalarID(id *ast.Ident) (int, bool) {
	if id.IsParam && c.fn != nil {
		return 0, false
	}
	gid, ok := c.res.GlobalScalarID[id.Name]
	return gid, ok
}

// globalArrayID reports id's slot in the VM's global-array table, if id
// names a global array.
func (c *Compiler) globalArrayID(id *ast.Ident) (int, bool) {
	if id.IsParam && c.fn != nil {
		return 0, false
	}
	gid, ok := c.res.GlobalArrayID[id.Name]
	return gid, ok
}

func (c *Compiler) loadScalar(id *ast.Ident, line int) error {
	if id.IsParam && c.fn != nil {
		c.cur.Emit(OpLoadLocalScalar, id.ParamIndex, 0, line)
		return nil
	}
	if gid, ok := c.globalScalarID(id); ok {
		c.cur.Emit(OpLoadGlobalScalar, gid, 0, line)
		return nil
	}
	return fmt.Errorf("%d: %q is not a scalar", line, c.syms.Resolve(id.Name))
}

func (c *Compiler) storeScalar(id *ast.Ident, line int) error {
	if id.IsParam && c.fn != nil {
		c.cur.Emit(OpStoreLocalScalar, id.ParamIndex, 0, line)
		return nil
	}
	if gid, ok := c.globalScalarID(id); ok {
		c.cur.Emit(OpStoreGlobalScalar, gid, 0, line)
		return nil
	}
	return fmt.Errorf("%d: %q is not a scalar", line, c.syms.Resolve(id.Name))
}

// loadLValue pushes the current value of an lvalue expression (Ident,
// ColumnExpr, or IndexExpr) onto the var stack.
func (c *Compiler) loadLValue(e ast.Expr, line int) error {
	switch t := e.(type) {
	case *ast.Ident:
		return c.loadScalar(t, line)
	case *ast.ColumnExpr:
		if err := c.compileExpr(t.Index); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpGetField, 0, 0, line)
		return nil
	case *ast.IndexExpr:
		for _, idx := range t.Indices {
			if err := c.compileExpr(idx); err != nil {
				return err
			}
		}
		if global, ok := c.globalArrayID(t.Array); ok {
			c.cur.Emit(OpArrayGetGlobal, global, len(t.Indices), line)
		} else {
			c.cur.Emit(OpArrayGetLocal, t.Array.ParamIndex, len(t.Indices), line)
		}
		return nil
	default:
		return fmt.Errorf("%d: not an lvalue: %T", line, e)
	}
}

// storeLValue pops the var stack top and stores it into e. Index
// expressions embedded in a ColumnExpr/IndexExpr target are recompiled
// here rather than reused from a prior loadLValue call, so a
// side-effecting index (rare, but legal AWK) is evaluated once per
// load and once per store of a read-modify-write sequence.
func (c *Compiler) storeLValue(e ast.Expr, line int) error {
	switch t := e.(type) {
	case *ast.Ident:
		return c.storeScalar(t, line)
	case *ast.ColumnExpr:
		if err := c.compileExpr(t.Index); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpSetField, 0, 0, line)
		return nil
	case *ast.IndexExpr:
		for _, idx := range t.Indices {
			if err := c.compileExpr(idx); err != nil {
				return err
			}
		}
		if global, ok := c.globalArrayID(t.Array); ok {
			c.cur.Emit(OpArraySetGlobal, global, len(t.Indices), line)
		} else {
			c.cur.Emit(OpArraySetLocal, t.Array.ParamIndex, len(t.Indices), line)
		}
		return nil
	default:
		return fmt.Errorf("%d: not an lvalue: %T", line, e)
	}
}

// ---- binary/logical/unary/ternary ----

var cmpOpcodes = map[ast.BinaryOp]OpCode{
	ast.OpLt: OpCmpLt, ast.OpLe: OpCmpLe, ast.OpGt: OpCmpGt,
	ast.OpGe: OpCmpGe, ast.OpEq: OpCmpEq, ast.OpNe: OpCmpNe,
}

var arithOpcodes = map[ast.BinaryOp]OpCode{
	ast.OpAdd: OpAddNum, ast.OpSub: OpSubNum, ast.OpMul: OpMulNum,
	ast.OpDiv: OpDivNum, ast.OpMod: OpModNum, ast.OpPow: OpPowNum,
}

func (c *Compiler) compileBinary(n *ast.BinaryExpr, line int) error {
	if n.Op == ast.OpMatch || n.Op == ast.OpNotMatch {
		return c.compileMatchOp(n, line)
	}
	if op, ok := cmpOpcodes[n.Op]; ok {
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur.Emit(op, 0, 0, line)
		return nil
	}
	op, ok := arithOpcodes[n.Op]
	if !ok {
		return fmt.Errorf("%d: unhandled binary operator %v", line, n.Op)
	}
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	c.cur.Emit(op, 0, 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)
	return nil
}

// compileMatchOp lowers `~`/`!~`. A RegexLit on the right is a literal
// pattern, not a "match against $0" expression, so it is pushed directly
// as a string constant here rather than through compileExpr's general
// RegexLit case.
func (c *Compiler) compileMatchOp(n *ast.BinaryExpr, line int) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	c.cur.Emit(OpVarToStr, 0, 0, line)
	if re, ok := n.Right.(*ast.RegexLit); ok {
		c.cur.Emit(OpPushStr, c.cur.AddStrConst(re.Pattern), 0, line)
	} else {
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur.Emit(OpVarToStr, 0, 0, line)
	}
	if n.Op == ast.OpMatch {
		c.cur.Emit(OpMatch, 0, 0, line)
	} else {
		c.cur.Emit(OpNotMatch, 0, 0, line)
	}
	return nil
}

// compileLogical lowers `&&`/`||` with short-circuit jumps, matching
// spec §4.5's lowering pseudocode: JumpIfFalse/JumpIfTrue peek, and
// every continuation pops explicitly.
func (c *Compiler) compileLogical(n *ast.LogicalExpr, line int) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	// && short-circuits on a false operand (result 0); || short-circuits
	// on a true operand (result 1) — the two constants below are swapped
	// between the shortCircuit and fall-through paths accordingly.
	condOp := OpJumpIfFalse
	shortCircuitConst, fallThroughConst := 0.0, 1.0
	if n.Op == ast.LogOr {
		condOp = OpJumpIfTrue
		shortCircuitConst, fallThroughConst = 1.0, 0.0
	}
	lj := c.cur.Emit(condOp, -1, 0, line)
	c.cur.Emit(OpPop, 0, 0, line)
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	rj := c.cur.Emit(condOp, -1, 0, line)
	c.cur.Emit(OpPop, 0, 0, line)
	c.cur.Emit(OpPushNum, c.cur.AddNumConst(fallThroughConst), 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)
	dj := c.cur.Emit(OpJump, -1, 0, line)

	shortCircuit := c.cur.Here()
	c.cur.Patch(lj, shortCircuit)
	c.cur.Patch(rj, shortCircuit)
	c.cur.Emit(OpPop, 0, 0, line)
	c.cur.Emit(OpPushNum, c.cur.AddNumConst(shortCircuitConst), 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)

	c.cur.Patch(dj, c.cur.Here())
	return nil
}

func (c *Compiler) compileTernary(n *ast.TernaryExpr, line int) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	elseJump := c.cur.Emit(OpJumpIfFalse, -1, 0, line)
	c.cur.Emit(OpPop, 0, 0, line)
	if err := c.compileExpr(n.Then); err != nil {
		return err
	}
	doneJump := c.cur.Emit(OpJump, -1, 0, line)
	c.cur.Patch(elseJump, c.cur.Here())
	c.cur.Emit(OpPop, 0, 0, line)
	if err := c.compileExpr(n.Else); err != nil {
		return err
	}
	c.cur.Patch(doneJump, c.cur.Here())
	return nil
}

func (c *Compiler) compileUnary(n *ast.UnaryExpr, line int) error {
	switch n.Op {
	case ast.OpNeg:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpNegNum, 0, 0, line)
		c.cur.Emit(OpNumToVar, 0, 0, line)
		return nil
	case ast.OpPos:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpNumToVar, 0, 0, line)
		return nil
	case ast.OpNot:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.cur.Emit(OpNotVar, 0, 0, line)
		return nil
	case ast.OpPreIncr, ast.OpPreDecr:
		if err := c.loadLValue(n.X, line); err != nil {
			return err
		}
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpPushNum, c.cur.AddNumConst(1), 0, line)
		if n.Op == ast.OpPreIncr {
			c.cur.Emit(OpAddNum, 0, 0, line)
		} else {
			c.cur.Emit(OpSubNum, 0, 0, line)
		}
		c.cur.Emit(OpNumToVar, 0, 0, line)
		c.cur.Emit(OpDupVar, 0, 0, line)
		return c.storeLValue(n.X, line)
	case ast.OpPostIncr, ast.OpPostDecr:
		// Leave the pre-update value on the var stack (the postfix
		// result) below the new value the store consumes.
		if err := c.loadLValue(n.X, line); err != nil {
			return err
		}
		c.cur.Emit(OpDupVar, 0, 0, line)
		c.cur.Emit(OpVarToNum, 0, 0, line)
		c.cur.Emit(OpPushNum, c.cur.AddNumConst(1), 0, line)
		if n.Op == ast.OpPostIncr {
			c.cur.Emit(OpAddNum, 0, 0, line)
		} else {
			c.cur.Emit(OpSubNum, 0, 0, line)
		}
		c.cur.Emit(OpNumToVar, 0, 0, line)
		return c.storeLValue(n.X, line)
	default:
		return fmt.Errorf("%d: unhandled unary operator %v", line, n.Op)
	}
}

// ---- assignment ----

var compoundArithOpcodes = map[ast.AssignOp]OpCode{
	ast.AssignAdd: OpAddNum, ast.AssignSub: OpSubNum, ast.AssignMul: OpMulNum,
	ast.AssignDiv: OpDivNum, ast.AssignMod: OpModNum, ast.AssignPow: OpPowNum,
}

func (c *Compiler) compileAssign(n *ast.AssignExpr, line int) error {
	if n.Op == ast.AssignSet {
		if err := c.compileExpr(n.Rhs); err != nil {
			return err
		}
		c.cur.Emit(OpDupVar, 0, 0, line)
		return c.storeLValue(n.Lhs, line)
	}
	op, ok := compoundArithOpcodes[n.Op]
	if !ok {
		return fmt.Errorf("%d: unhandled assignment operator %v", line, n.Op)
	}
	if err := c.loadLValue(n.Lhs, line); err != nil {
		return err
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	if err := c.compileExpr(n.Rhs); err != nil {
		return err
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	c.cur.Emit(op, 0, 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)
	c.cur.Emit(OpDupVar, 0, 0, line)
	return c.storeLValue(n.Lhs, line)
}

// ---- arrays ----

func (c *Compiler) compileIndexGet(n *ast.IndexExpr, line int) error {
	for _, idx := range n.Indices {
		if err := c.compileExpr(idx); err != nil {
			return err
		}
	}
	if global, ok := c.globalArrayID(n.Array); ok {
		c.cur.Emit(OpArrayGetGlobal, global, len(n.Indices), line)
	} else {
		c.cur.Emit(OpArrayGetLocal, n.Array.ParamIndex, len(n.Indices), line)
	}
	return nil
}

// compileArrayAssign lowers `arr[i,...] op= rhs`. ArraySet's stack
// convention is value-then-indices (indices on top at the point of the
// op), so the value-producing side always compiles before the index
// expressions that will consume it, letting a single DupVar leave the
// assignment's value behind once the indices are popped.
func (c *Compiler) compileArrayAssign(n *ast.ArrayAssignExpr, line int) error {
	emitSet := func() {
		global, isGlobal := c.globalArrayID(n.Array)
		if isGlobal {
			c.cur.Emit(OpArraySetGlobal, global, len(n.Indices), line)
		} else {
			c.cur.Emit(OpArraySetLocal, n.Array.ParamIndex, len(n.Indices), line)
		}
	}
	compileIndices := func() error {
		for _, idx := range n.Indices {
			if err := c.compileExpr(idx); err != nil {
				return err
			}
		}
		return nil
	}

	if n.Op == ast.AssignSet {
		if err := c.compileExpr(n.Rhs); err != nil {
			return err
		}
		c.cur.Emit(OpDupVar, 0, 0, line)
		if err := compileIndices(); err != nil {
			return err
		}
		emitSet()
		return nil
	}

	op, ok := compoundArithOpcodes[n.Op]
	if !ok {
		return fmt.Errorf("%d: unhandled array assignment operator %v", line, n.Op)
	}
	if err := compileIndices(); err != nil {
		return err
	}
	global, isGlobal := c.globalArrayID(n.Array)
	if isGlobal {
		c.cur.Emit(OpArrayGetGlobal, global, len(n.Indices), line)
	} else {
		c.cur.Emit(OpArrayGetLocal, n.Array.ParamIndex, len(n.Indices), line)
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	if err := c.compileExpr(n.Rhs); err != nil {
		return err
	}
	c.cur.Emit(OpVarToNum, 0, 0, line)
	c.cur.Emit(op, 0, 0, line)
	c.cur.Emit(OpNumToVar, 0, 0, line)
	c.cur.Emit(OpDupVar, 0, 0, line)
	if err := compileIndices(); err != nil {
		return err
	}
	emitSet()
	return nil
}

func (c *Compiler) compileIn(n *ast.InExpr, line int) error {
	for _, idx := range n.Indices {
		if err := c.compileExpr(idx); err != nil {
			return err
		}
	}
	if global, ok := c.globalArrayID(n.Array); ok {
		c.cur.Emit(OpArrayHasGlobal, global, len(n.Indices), line)
	} else {
		c.cur.Emit(OpArrayHasLocal, n.Array.ParamIndex, len(n.Indices), line)
	}
	return nil
}

// ---- calls ----

func (c *Compiler) compileCall(n *ast.CallExpr, line int) error {
	fn := c.prog.Functions[n.Callee]
	if fn == nil {
		return fmt.Errorf("%d: call to unknown function %q", line, c.syms.Resolve(n.Callee))
	}
	for i, arg := range n.Args {
		if i >= len(fn.ParamKinds) {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
			c.cur.Emit(OpPop, 0, 0, line)
			continue
		}
		if fn.ParamKinds[i] == ast.Array {
			id, ok := arg.(*ast.Ident)
			if !ok {
				return fmt.Errorf("%d: array expected, scalar expression given in call to %q", line, c.syms.Resolve(n.Callee))
			}
			if global, ok := c.globalArrayID(id); ok {
				c.cur.Emit(OpPushArrayGlobal, global, 0, line)
			} else {
				c.cur.Emit(OpPushArrayLocal, id.ParamIndex, 0, line)
			}
			continue
		}
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	funcIndex := c.funcSym[n.Callee]
	c.cur.Emit(OpCall, funcIndex, len(n.Args), line)
	return nil
}

// ---- builtins ----

func (c *Compiler) compileBuiltin(n *ast.BuiltinCallExpr, line int) error {
	if n.Func == ast.BuiltinSplit {
		// The lexer only yields a regex literal after ~ or !~, so split's
		// separator arrives as an ordinary string expression. Should a
		// RegexLit argument reach here, its pattern text is pushed as a
		// string rather than folded into a "match against $0" boolean by
		// compileExpr's general RegexLit case.
		for _, a := range n.Args {
			if re, ok := a.(*ast.RegexLit); ok {
				c.cur.Emit(OpPushStr, c.cur.AddStrConst(re.Pattern), 0, line)
				c.cur.Emit(OpStrToVar, 0, 0, line)
				continue
			}
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		if global, ok := c.globalArrayID(n.ArrayArg); ok {
			c.cur.Emit(OpSplitGlobal, global, len(n.Args), line)
		} else {
			c.cur.Emit(OpSplitLocal, n.ArrayArg.ParamIndex, len(n.Args), line)
		}
		return nil
	}
	for i, a := range n.Args {
		// match's second argument gets the same RegexLit handling as
		// split's separator; any other RegexLit argument goes through
		// compileExpr's general case.
		if re, ok := a.(*ast.RegexLit); ok && n.Func == ast.BuiltinMatch && i == 1 {
			c.cur.Emit(OpPushStr, c.cur.AddStrConst(re.Pattern), 0, line)
			c.cur.Emit(OpStrToVar, 0, 0, line)
			continue
		}
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	c.cur.Emit(OpCallBuiltin, int(n.Func), len(n.Args), line)
	return nil
}

// compileSub lowers sub/gsub: a read-modify-write on Target via the
// same lvalue helpers ordinary assignment uses, per spec §8 scenario 6
// (sub mutates its third argument in place and evaluates to the
// replacement count). The pattern normally arrives as a string
// expression, since the lexer only yields a regex literal after ~ or !~;
// a RegexLit pattern, should one reach here, is pushed directly as a
// string constant rather than through compileExpr's general RegexLit
// case, which would turn it into a "match against $0" boolean.
func (c *Compiler) compileSub(n *ast.SubExpr, line int) error {
	if re, ok := n.Regex.(*ast.RegexLit); ok {
		c.cur.Emit(OpPushStr, c.cur.AddStrConst(re.Pattern), 0, line)
	} else {
		if err := c.compileExpr(n.Regex); err != nil {
			return err
		}
		c.cur.Emit(OpVarToStr, 0, 0, line)
	}
	if err := c.compileExpr(n.Repl); err != nil {
		return err
	}
	c.cur.Emit(OpVarToStr, 0, 0, line)
	target := n.Target
	if target == nil {
		target = &ast.ColumnExpr{Index: &ast.NumberLit{Value: 0}}
	}
	if err := c.loadLValue(target, line); err != nil {
		return err
	}
	c.cur.Emit(OpVarToStr, 0, 0, line)
	global := 0
	if n.Global {
		global = 1
	}
	c.cur.Emit(OpSub, global, 0, line)
	c.cur.Emit(OpStrToVar, 0, 0, line)
	if err := c.storeLValue(target, line); err != nil {
		return err
	}
	c.cur.Emit(OpNumToVar, 0, 0, line)
	return nil
}

// ---- getline ----

// compileGetline lowers bare `getline` / `getline var`. getline from an
// explicit file or pipe, and `getline $n`, are out of scope (spec §1
// Non-goals).
func (c *Compiler) compileGetline(n *ast.NextLineExpr, line int) error {
	if n.Target == nil {
		c.cur.Emit(OpNextLine, 0, 0, line)
		return nil
	}
	id, ok := n.Target.(*ast.Ident)
	if !ok {
		return fmt.Errorf("%d: getline target must be a variable", line)
	}
	if id.IsParam && c.fn != nil {
		c.cur.Emit(OpNextLine, 2, id.ParamIndex, line)
		return nil
	}
	gid, ok := c.globalScalarID(id)
	if !ok {
		return fmt.Errorf("%d: getline target must be a scalar variable", line)
	}
	c.cur.Emit(OpNextLine, 1, gid, line)
	return nil
}

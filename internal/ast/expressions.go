package ast

import (
	"github.com/rawklang/rawk/internal/symtab"
	"github.com/rawklang/rawk/internal/token"
)

// Expr is any expression node. Every Expr carries an inferred ScalarType
// (spec §3 invariant); the executor uses it only as an optimization hint,
// never authoritatively — runtime values are always tagged independently
// (internal/runtime.Value).
type Expr interface {
	exprNode()
	Pos() token.Position
	Type() ScalarType
	SetType(ScalarType)
}

type baseExpr struct {
	Position token.Position
	Typ      ScalarType
}

func (baseExpr) exprNode()             {}
func (e baseExpr) Pos() token.Position { return e.Position }
func (e baseExpr) Type() ScalarType    { return e.Typ }
func (e *baseExpr) SetType(t ScalarType) { e.Typ = t }

// NumberLit is a numeric literal.
type NumberLit struct {
	baseExpr
	Value float64
}

// StringLit is a double-quoted string literal, escapes already resolved.
type StringLit struct {
	baseExpr
	Value string
}

// RegexLit is a `/.../` literal. The lexer recognizes one only right after
// `~` or `!~`, so a RegexLit only ever appears as the right operand of a
// match BinaryExpr; a `/` anywhere else is division.
type RegexLit struct {
	baseExpr
	Pattern string
}

// Ident is a bare variable reference. Kind is filled in by analysis
// (Scalar or Array); IsParam/ParamIndex are filled in by the parser when
// resolving against the enclosing function's parameter list.
type Ident struct {
	baseExpr
	Name       symtab.Symbol
	Kind       ArgKind
	IsParam    bool
	ParamIndex int
}

// ColumnExpr is `$expr`, a field reference.
type ColumnExpr struct {
	baseExpr
	Index Expr
}

// NextLineExpr is bare `getline` (or `getline var`), spec's "next-line
// sentinel": advances the reader and evaluates to 1/0/-1. getline from an
// explicit file or pipe is out of scope (spec §1 Non-goals).
type NextLineExpr struct {
	baseExpr
	Target Expr // nil, or an lvalue (Ident/ColumnExpr/IndexExpr) to assign into
}

// BinaryOp enumerates the arithmetic, comparison, and match operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow

	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe

	OpMatch
	OpNotMatch
)

// BinaryExpr covers math-ops, comparison-ops, and match ops (spec groups
// these as separate Expr variants; they share identical shape in Go so one
// node with an Op tag avoids four near-duplicate struct types).
type BinaryExpr struct {
	baseExpr
	Op          BinaryOp
	Left, Right Expr
}

// LogicalOp distinguishes && from || for LogicalExpr.
type LogicalOp int

const (
	LogAnd LogicalOp = iota
	LogOr
)

// LogicalExpr is a short-circuiting `&&`/`||`.
type LogicalExpr struct {
	baseExpr
	Op          LogicalOp
	Left, Right Expr
}

// UnaryOp enumerates prefix/postfix unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPos
	OpNot
	OpPreIncr
	OpPreDecr
	OpPostIncr
	OpPostDecr
)

// UnaryExpr is a prefix or postfix `++ -- ! + -`.
type UnaryExpr struct {
	baseExpr
	Op   UnaryOp
	X    Expr
}

// ConcatExpr is string concatenation by juxtaposition: a sequence of
// adjacent expressions folded together by the parser's lookahead rule
// (spec §4.3).
type ConcatExpr struct {
	baseExpr
	Parts []Expr
}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	baseExpr
	Cond, Then, Else Expr
}

// AssignOp enumerates `= += -= *= /= %= ^=`.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignPow
)

// AssignExpr is a scalar assignment `lhs op= rhs`. Lhs is an Ident or
// ColumnExpr; array-element assignment uses ArrayAssignExpr instead so the
// code generator can tell the two apart without a type switch on Lhs.
type AssignExpr struct {
	baseExpr
	Op  AssignOp
	Lhs Expr
	Rhs Expr
}

// IndexExpr is `arr[i, j, ...]` used as an rvalue.
type IndexExpr struct {
	baseExpr
	Array   *Ident
	Indices []Expr
}

// ArrayAssignExpr is `arr[i, j, ...] op= rhs`.
type ArrayAssignExpr struct {
	baseExpr
	Op      AssignOp
	Array   *Ident
	Indices []Expr
	Rhs     Expr
}

// InExpr is the membership test `(e1, e2, ...) in arr` / `e in arr`.
type InExpr struct {
	baseExpr
	Indices []Expr
	Array   *Ident
}

// BuiltinFunc enumerates fixed-arity/known built-ins that get their own
// bytecode opcode (spec §4.5 "Builtins"), as opposed to user-defined
// functions which go through Call/Ret.
type BuiltinFunc int

const (
	BuiltinLength BuiltinFunc = iota
	BuiltinSubstr
	BuiltinSplit
	BuiltinIndex
	BuiltinInt
	BuiltinSin
	BuiltinCos
	BuiltinAtan2
	BuiltinLog
	BuiltinExp
	BuiltinSqrt
	BuiltinRand
	BuiltinSrand
	BuiltinTolower
	BuiltinToupper
	BuiltinSprintf
	BuiltinMatch
)

// CallExpr is a call to a user-defined function. Builtins never route
// through here: sprintf and the other BuiltinFunc names are
// BuiltinCallExpr, sub/gsub are SubExpr, and printf is a statement.
type CallExpr struct {
	baseExpr
	Callee symtab.Symbol
	Args   []Expr
}

// BuiltinCallExpr is a call to one of the fixed built-in functions.
// ArrayArg is set for split's destination-array parameter, which is a
// by-reference array rather than a scalar value expression.
type BuiltinCallExpr struct {
	baseExpr
	Func     BuiltinFunc
	Args     []Expr
	ArrayArg *Ident
}

// SubExpr is `sub(re, repl, target)` / `gsub(re, repl, target)`. Target
// defaults to $0 when omitted, matching the AWK default-argument rule.
type SubExpr struct {
	baseExpr
	Global bool
	Regex  Expr
	Repl   Expr
	Target Expr // lvalue: Ident, ColumnExpr, or IndexExpr
}

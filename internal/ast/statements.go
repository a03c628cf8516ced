package ast

import "github.com/rawklang/rawk/internal/token"

// Stmt is any executable statement node (spec §3 "Stmt variants").
type Stmt interface {
	stmtNode()
	Pos() token.Position
}

type baseStmt struct {
	Position token.Position
}

func (baseStmt) stmtNode()              {}
func (s baseStmt) Pos() token.Position  { return s.Position }

// ExprStmt is an expression evaluated for its side effect, result discarded.
type ExprStmt struct {
	baseStmt
	X Expr
}

// BlockStmt is a sequence of statements (the "group" variant in spec §3).
type BlockStmt struct {
	baseStmt
	List []Stmt
}

// PrintStmt is `print expr, expr, ...`. Args may be empty (implicit $0).
type PrintStmt struct {
	baseStmt
	Args []Expr
}

// PrintfStmt is `printf fmt, expr, ...`.
type PrintfStmt struct {
	baseStmt
	Format Expr
	Args   []Expr
}

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	baseStmt
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
}

// WhileStmt is `while (Cond) Body`, and also lowers `do Body while(Cond)`
// and the three-clause `for` via the parser (spec §4.3 grammar; all three
// loop forms share this node with Init/Post filled for C-style for).
type WhileStmt struct {
	baseStmt
	Init Stmt // non-nil only for C-style `for (Init; Cond; Post)`
	Cond Expr
	Post Stmt
	Body Stmt
	// PostCondition is true for `do...while`, where Cond is checked after
	// the first iteration rather than before it.
	PostCondition bool
}

// ForInStmt is `for (Var in Array) Body`.
type ForInStmt struct {
	baseStmt
	Var   *Ident
	Array *Ident
	Body  Stmt
}

// BreakStmt is `break`.
type BreakStmt struct{ baseStmt }

// ContinueStmt is `continue`.
type ContinueStmt struct{ baseStmt }

// NextStmt is `next` — skip to the next input record.
type NextStmt struct{ baseStmt }

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	baseStmt
	Value Expr // nil for a bare `return`
}

// ExitStmt is `exit [expr]`: terminates the program (after running any
// END rules, unless already inside one), optionally setting the process
// exit code.
type ExitStmt struct {
	baseStmt
	Code Expr // nil for a bare `exit`
}

// DeleteStmt is `delete arr[i, j]` or `delete arr` (clears the whole array).
type DeleteStmt struct {
	baseStmt
	Array   *Ident
	Indices []Expr // empty clears the whole array
}

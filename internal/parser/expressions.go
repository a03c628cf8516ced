package parser

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/token"
)

// parseExpr is the parser's expression entry point: assignment is the
// lowest-precedence production (spec §4.3 precedence table).
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssign()
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.ASSIGN:     ast.AssignSet,
	token.ADD_ASSIGN: ast.AssignAdd,
	token.SUB_ASSIGN: ast.AssignSub,
	token.MUL_ASSIGN: ast.AssignMul,
	token.DIV_ASSIGN: ast.AssignDiv,
	token.MOD_ASSIGN: ast.AssignMod,
	token.POW_ASSIGN: ast.AssignPow,
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.c.cur().Kind]
	if !ok {
		return lhs, nil
	}
	pos := p.c.cur().Pos
	p.c.advance()
	p.c.skipNewlines()
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if idx, ok := lhs.(*ast.IndexExpr); ok {
		e := &ast.ArrayAssignExpr{Op: op, Array: idx.Array, Indices: idx.Indices, Rhs: rhs}
		e.Position = pos
		return e, nil
	}
	e := &ast.AssignExpr{Op: op, Lhs: lhs, Rhs: rhs}
	e.Position = pos
	return e, nil
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.c.at(token.QUESTION) {
		return cond, nil
	}
	pos := p.c.cur().Pos
	p.c.advance()
	p.c.skipNewlines()
	then, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	p.c.skipNewlines()
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	p.c.skipNewlines()
	els, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	e := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	e.Position = pos
	return e, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.OR) {
		pos := p.c.cur().Pos
		p.c.advance()
		p.c.skipNewlines()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		e := &ast.LogicalExpr{Op: ast.LogOr, Left: left, Right: right}
		e.Position = pos
		left = e
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseIn()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.AND) {
		pos := p.c.cur().Pos
		p.c.advance()
		p.c.skipNewlines()
		right, err := p.parseIn()
		if err != nil {
			return nil, err
		}
		e := &ast.LogicalExpr{Op: ast.LogAnd, Left: left, Right: right}
		e.Position = pos
		left = e
	}
	return left, nil
}

// parseIn handles the single-operand membership test `expr in arr`; the
// multi-dimensional `(e1, e2) in arr` form is recognized in parsePrimary,
// where the parenthesized list is unambiguous.
func (p *Parser) parseIn() (ast.Expr, error) {
	left, err := p.parseMatch()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.IN) {
		pos := p.c.cur().Pos
		p.c.advance()
		if !p.c.at(token.IDENT) {
			return nil, p.unexpected("array name after 'in'")
		}
		arrTok := p.c.advance()
		e := &ast.InExpr{Indices: []ast.Expr{left}, Array: p.identFromToken(arrTok)}
		e.Position = pos
		left = e
	}
	return left, nil
}

func (p *Parser) parseMatch() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.MATCH) || p.c.at(token.NOTMATCH) {
		op := ast.OpMatch
		if p.c.cur().Kind == token.NOTMATCH {
			op = ast.OpNotMatch
		}
		pos := p.c.cur().Pos
		p.c.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		e.Position = pos
		left = e
	}
	return left, nil
}

var relOps = map[token.Kind]ast.BinaryOp{
	token.LT: ast.OpLt, token.LE: ast.OpLe, token.GT: ast.OpGt,
	token.GE: ast.OpGe, token.EQ: ast.OpEq, token.NE: ast.OpNe,
}

// parseRelational handles a single (non-chaining) comparison, matching
// awk's non-associative relational operators.
func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if op, ok := relOps[p.c.cur().Kind]; ok {
		pos := p.c.cur().Pos
		p.c.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		e.Position = pos
		return e, nil
	}
	return left, nil
}

// parseConcat folds a run of juxtaposed expressions into one ConcatExpr.
// Additive (+ -) is consumed entirely one level down, so by the time
// control returns here the current token starting a new CatStartsExpr
// operand can only mean concatenation, never a binary + or - (spec §4.3).
func (p *Parser) parseConcat() (ast.Expr, error) {
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.c.cur().Kind.Is(token.CatStartsExpr) {
		return first, nil
	}
	parts := []ast.Expr{first}
	for p.c.cur().Kind.Is(token.CatStartsExpr) {
		next, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	e := &ast.ConcatExpr{Parts: parts}
	e.Position = first.Pos()
	return e, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.PLUS) || p.c.at(token.MINUS) {
		op := ast.OpAdd
		if p.c.cur().Kind == token.MINUS {
			op = ast.OpSub
		}
		pos := p.c.cur().Pos
		p.c.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		e.Position = pos
		left = e
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.STAR) || p.c.at(token.SLASH) || p.c.at(token.PCT) {
		var op ast.BinaryOp
		switch p.c.cur().Kind {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		pos := p.c.cur().Pos
		p.c.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		e.Position = pos
		left = e
	}
	return left, nil
}

// parseUnary handles prefix `! + -` and prefix `++ --`, recursing on
// itself so chains like `!!x` or `--$1` parse, then falls through to the
// exponent level (which binds tighter than unary on the left: -2^2 is
// -(2^2)).
func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.c.cur().Kind {
	case token.NOT, token.PLUS, token.MINUS:
		var op ast.UnaryOp
		switch p.c.cur().Kind {
		case token.NOT:
			op = ast.OpNot
		case token.PLUS:
			op = ast.OpPos
		default:
			op = ast.OpNeg
		}
		pos := p.c.cur().Pos
		p.c.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Position = pos
		return e, nil
	case token.INCR, token.DECR:
		op := ast.OpPreIncr
		if p.c.cur().Kind == token.DECR {
			op = ast.OpPreDecr
		}
		pos := p.c.cur().Pos
		p.c.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Position = pos
		return e, nil
	}
	return p.parseExponent()
}

// parseExponent implements right-associative `^`, recursing through
// parseUnary on the right so `2^-2` and `a^b^c` both parse correctly.
func (p *Parser) parseExponent() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.c.at(token.CARET) {
		pos := p.c.cur().Pos
		p.c.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		e := &ast.BinaryExpr{Op: ast.OpPow, Left: left, Right: right}
		e.Position = pos
		return e, nil
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.c.at(token.INCR) || p.c.at(token.DECR) {
		op := ast.OpPostIncr
		if p.c.cur().Kind == token.DECR {
			op = ast.OpPostDecr
		}
		pos := p.c.cur().Pos
		p.c.advance()
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Position = pos
		x = e
	}
	return x, nil
}

// parseFieldOperand parses the tightly-bound operand of `$`, allowing
// prefix ++/-- and nested `$` (so `$++i` and `$$1` both parse) without
// falling into the full postfix/binary grammar — `$i++` must mean
// `($i)++`, resolved by returning here before parsePostfix ever sees it.
func (p *Parser) parseFieldOperand() (ast.Expr, error) {
	switch p.c.cur().Kind {
	case token.INCR, token.DECR:
		op := ast.OpPreIncr
		if p.c.cur().Kind == token.DECR {
			op = ast.OpPreDecr
		}
		pos := p.c.cur().Pos
		p.c.advance()
		x, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Position = pos
		return e, nil
	default:
		return p.parsePrimary()
	}
}

var builtinFuncs = map[string]ast.BuiltinFunc{
	"substr": ast.BuiltinSubstr, "index": ast.BuiltinIndex, "int": ast.BuiltinInt,
	"sin": ast.BuiltinSin, "cos": ast.BuiltinCos, "atan2": ast.BuiltinAtan2,
	"log": ast.BuiltinLog, "exp": ast.BuiltinExp, "sqrt": ast.BuiltinSqrt,
	"rand": ast.BuiltinRand, "srand": ast.BuiltinSrand,
	"tolower": ast.BuiltinTolower, "toupper": ast.BuiltinToupper,
	"sprintf": ast.BuiltinSprintf, "match": ast.BuiltinMatch,
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.c.cur()
	pos := tok.Pos

	switch tok.Kind {
	case token.NUMBER:
		p.c.advance()
		e := &ast.NumberLit{Value: tok.Num}
		e.Position = pos
		return e, nil
	case token.STRING:
		p.c.advance()
		e := &ast.StringLit{Value: tok.Str}
		e.Position = pos
		return e, nil
	case token.REGEX:
		p.c.advance()
		e := &ast.RegexLit{Pattern: tok.Str}
		e.Position = pos
		return e, nil
	case token.TRUE:
		p.c.advance()
		e := &ast.NumberLit{Value: 1}
		e.Position = pos
		return e, nil
	case token.FALSE:
		p.c.advance()
		e := &ast.NumberLit{Value: 0}
		e.Position = pos
		return e, nil
	case token.DOLLAR:
		p.c.advance()
		idx, err := p.parseFieldOperand()
		if err != nil {
			return nil, err
		}
		e := &ast.ColumnExpr{Index: idx}
		e.Position = pos
		return e, nil
	case token.GETLINE:
		return p.parseGetline()
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.IDENT:
		return p.parseIdentOrCall()
	}
	return nil, p.unexpected("expression")
}

func (p *Parser) parseGetline() (ast.Expr, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	e := &ast.NextLineExpr{}
	e.Position = pos
	if p.c.at(token.IDENT) || p.c.at(token.DOLLAR) {
		target, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		e.Target = target
	}
	return e, nil
}

// parseParenOrTuple handles `(expr)` grouping and the multi-dimensional
// membership test `(e1, e2, ...) in arr` (spec §4.3); the two are told
// apart by whether a comma appears before the closing paren.
func (p *Parser) parseParenOrTuple() (ast.Expr, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	p.c.skipNewlines()
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.c.at(token.COMMA) {
		p.c.skipNewlines()
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}
	list := []ast.Expr{first}
	for p.c.at(token.COMMA) {
		p.c.advance()
		p.c.skipNewlines()
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	if !p.c.at(token.IDENT) {
		return nil, p.unexpected("array name after 'in'")
	}
	arrTok := p.c.advance()
	e := &ast.InExpr{Indices: list, Array: p.identFromToken(arrTok)}
	e.Position = pos
	return e, nil
}

func (p *Parser) parseIdentOrCall() (ast.Expr, error) {
	tok := p.c.advance()
	pos := tok.Pos

	switch tok.Str {
	case "length":
		return p.parseLength(pos)
	case "split":
		return p.parseSplit(pos)
	case "sub", "gsub":
		return p.parseSub(pos, tok.Str == "gsub")
	}
	if bf, ok := builtinFuncs[tok.Str]; ok {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		e := &ast.BuiltinCallExpr{Func: bf, Args: args}
		e.Position = pos
		return e, nil
	}

	if p.c.at(token.LBRACKET) {
		p.c.advance()
		var indices []ast.Expr
		for {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
			if p.c.at(token.COMMA) {
				p.c.advance()
				p.c.skipNewlines()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		e := &ast.IndexExpr{Array: p.identFromToken(tok), Indices: indices}
		e.Position = pos
		return e, nil
	}

	if p.c.at(token.LPAREN) {
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		e := &ast.CallExpr{Callee: tok.Sym, Args: args}
		e.Position = pos
		return e, nil
	}

	return p.identFromToken(tok), nil
}

// parseCallArgs parses a required parenthesized, comma-separated argument
// list; an empty `()` yields a nil slice.
func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	p.c.skipNewlines()
	if p.c.at(token.RPAREN) {
		p.c.advance()
		return nil, nil
	}
	var args []ast.Expr
	for {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.c.at(token.COMMA) {
			p.c.advance()
			p.c.skipNewlines()
			continue
		}
		break
	}
	p.c.skipNewlines()
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseLength accepts all three forms awk allows: bare `length`,
// `length()`, and `length(expr)` — all default to $0 when no argument is
// given (spec §5 builtins).
func (p *Parser) parseLength(pos token.Position) (ast.Expr, error) {
	e := &ast.BuiltinCallExpr{Func: ast.BuiltinLength}
	e.Position = pos
	if !p.c.at(token.LPAREN) {
		return e, nil
	}
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	e.Args = args
	return e, nil
}

func (p *Parser) parseSplit(pos token.Position) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	s, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	if !p.c.at(token.IDENT) {
		return nil, p.unexpected("split destination array")
	}
	arrTok := p.c.advance()
	e := &ast.BuiltinCallExpr{Func: ast.BuiltinSplit, Args: []ast.Expr{s}, ArrayArg: p.identFromToken(arrTok)}
	e.Position = pos
	if p.c.at(token.COMMA) {
		p.c.advance()
		fs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, fs)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

// parseSub parses `sub(re, repl[, target])` / `gsub(...)`; target
// defaults to $0 when omitted (spec §5).
func (p *Parser) parseSub(pos token.Position, global bool) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	re, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	repl, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	e := &ast.SubExpr{Global: global, Regex: re, Repl: repl}
	e.Position = pos
	if p.c.at(token.COMMA) {
		p.c.advance()
		target, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e.Target = target
	} else {
		dollar0 := &ast.NumberLit{Value: 0}
		dollar0.Position = pos
		col := &ast.ColumnExpr{Index: dollar0}
		col.Position = pos
		e.Target = col
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

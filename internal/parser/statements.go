package parser

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/token"
)

func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	pos := p.c.cur().Pos
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	block := &ast.BlockStmt{}
	block.Position = pos
	p.c.skipTerminators()
	for !p.c.at(token.RBRACE) && !p.c.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.List = append(block.List, stmt)
		p.c.skipTerminators()
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

// parseSimpleOrBlock parses either a `{ ... }` block or a single statement,
// for use as the body of if/while/for/do.
func (p *Parser) parseSimpleOrBlock() (ast.Stmt, error) {
	p.c.skipNewlines()
	if p.c.at(token.LBRACE) {
		return p.parseBlock()
	}
	if p.c.at(token.SEMI) {
		pos := p.c.cur().Pos
		p.c.advance()
		blk := &ast.BlockStmt{}
		blk.Position = pos
		return blk, nil
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	switch p.c.cur().Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		p.c.advance()
		s := &ast.BreakStmt{}
		s.Position = pos
		return s, nil
	case token.CONTINUE:
		p.c.advance()
		s := &ast.ContinueStmt{}
		s.Position = pos
		return s, nil
	case token.NEXT:
		p.c.advance()
		s := &ast.NextStmt{}
		s.Position = pos
		return s, nil
	case token.RETURN:
		p.c.advance()
		if p.atStatementEnd() {
			s := &ast.ReturnStmt{}
			s.Position = pos
			return s, nil
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s := &ast.ReturnStmt{Value: val}
		s.Position = pos
		return s, nil
	case token.EXIT:
		p.c.advance()
		if p.atStatementEnd() {
			s := &ast.ExitStmt{}
			s.Position = pos
			return s, nil
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s := &ast.ExitStmt{Code: val}
		s.Position = pos
		return s, nil
	case token.DELETE:
		return p.parseDelete()
	case token.PRINT:
		return p.parsePrint()
	case token.PRINTF:
		return p.parsePrintf()
	case token.SEMI:
		blk := &ast.BlockStmt{}
		blk.Position = pos
		return blk, nil
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s := &ast.ExprStmt{X: x}
		s.Position = pos
		return s, nil
	}
}

func (p *Parser) atStatementEnd() bool {
	k := p.c.cur().Kind
	return k == token.SEMI || k == token.NEWLINE || k == token.RBRACE || k == token.EOF
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseSimpleOrBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	stmt.Position = pos

	mark := p.c.mark()
	p.c.skipTerminators()
	if p.c.at(token.ELSE) {
		p.c.advance()
		els, err := p.parseSimpleOrBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	} else {
		p.c.reset(mark)
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseSimpleOrBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.WhileStmt{Cond: cond, Body: body}
	s.Position = pos
	return s, nil
}

func (p *Parser) parseDoWhile() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	body, err := p.parseSimpleOrBlock()
	if err != nil {
		return nil, err
	}
	p.c.skipTerminators()
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	s := &ast.WhileStmt{Cond: cond, Body: body, PostCondition: true}
	s.Position = pos
	return s, nil
}

// parseFor handles both `for (init; cond; post) body` and
// `for (var in arr) body`, distinguishing them by scanning past the first
// identifier for `in` (spec §4.3's bounded look-ahead, reused here in a
// simpler single-identifier form since the for-in variable is never an
// expression).
func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	if p.c.at(token.IDENT) && p.c.peek().Kind == token.IN {
		varTok := p.c.advance()
		p.c.advance() // 'in'
		if !p.c.at(token.IDENT) {
			return nil, p.unexpected("for-in array name")
		}
		arrTok := p.c.advance()
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseSimpleOrBlock()
		if err != nil {
			return nil, err
		}
		s := &ast.ForInStmt{
			Var:   p.identFromToken(varTok),
			Array: p.identFromToken(arrTok),
			Body:  body,
		}
		s.Position = pos
		return s, nil
	}

	var init ast.Stmt
	if !p.c.at(token.SEMI) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		init = s
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	var cond ast.Expr
	if !p.c.at(token.SEMI) {
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	var post ast.Stmt
	if !p.c.at(token.RPAREN) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		post = s
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseSimpleOrBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.WhileStmt{Init: init, Cond: cond, Post: post, Body: body}
	s.Position = pos
	return s, nil
}

func (p *Parser) parseDelete() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	if !p.c.at(token.IDENT) {
		return nil, p.unexpected("delete target")
	}
	arrTok := p.c.advance()
	stmt := &ast.DeleteStmt{Array: p.identFromToken(arrTok)}
	stmt.Position = pos
	if p.c.at(token.LBRACKET) {
		p.c.advance()
		for {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Indices = append(stmt.Indices, idx)
			if p.c.at(token.COMMA) {
				p.c.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
	} else if p.c.at(token.LPAREN) {
		// `delete arr()` — rare alternate form some awks accept.
		p.c.advance()
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	stmt := &ast.PrintStmt{}
	stmt.Position = pos
	if p.atStatementEnd() {
		return stmt, nil
	}
	args, err := p.parsePrintExprList()
	if err != nil {
		return nil, err
	}
	stmt.Args = args
	return stmt, nil
}

func (p *Parser) parsePrintf() (ast.Stmt, error) {
	pos := p.c.cur().Pos
	p.c.advance()
	args, err := p.parsePrintExprList()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, p.errorf("printf requires a format argument")
	}
	s := &ast.PrintfStmt{Format: args[0], Args: args[1:]}
	s.Position = pos
	return s, nil
}

// parsePrintExprList parses the comma-separated argument list of print/
// printf. It parses at the "unary" (no top-level `>` ) precedence in real
// awk to keep output-redirection syntax (`print x > "file"`) unambiguous;
// redirection itself is out of scope (not named by spec.md), so this
// parses full expressions — `>` inside a print list is still a comparison,
// consistent with spec's operator precedence table which names no
// print-specific carve-out.
func (p *Parser) parsePrintExprList() ([]ast.Expr, error) {
	var args []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.c.at(token.COMMA) {
			p.c.advance()
			p.c.skipNewlines()
			continue
		}
		break
	}
	return args, nil
}

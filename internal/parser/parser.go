// Package parser is a recursive-descent parser over the AWK token stream
// produced by internal/lexer, producing an internal/ast.Program (spec §4.3).
package parser

import (
	"github.com/rawklang/rawk/internal/ast"
	"github.com/rawklang/rawk/internal/lexer"
	"github.com/rawklang/rawk/internal/symtab"
	"github.com/rawklang/rawk/internal/token"
)

// Parser builds a Program from a pre-scanned token list.
type Parser struct {
	c    *cursor
	syms *symtab.Table

	// curParams maps a parameter name to its index within the function
	// currently being parsed, so identifier references inside a function
	// body can be resolved to a ParamIndex rather than a global at parse time.
	curParams map[symtab.Symbol]int
}

// Parse lexes and parses src in one call.
func Parse(src string, syms *symtab.Table) (*ast.Program, error) {
	toks, err := lexer.Lex(src, syms)
	if err != nil {
		return nil, err
	}
	p := &Parser{c: newCursor(toks), syms: syms}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Functions: make(map[symtab.Symbol]*ast.Function)}
	p.c.skipTerminators()
	for !p.c.at(token.EOF) {
		if p.c.at(token.FUNCTION) {
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			prog.Functions[fn.Name] = fn
			prog.FuncOrder = append(prog.FuncOrder, fn.Name)
		} else {
			item, err := p.parseItem()
			if err != nil {
				return nil, err
			}
			prog.Items = append(prog.Items, item)
		}
		p.c.skipTerminators()
	}
	return prog, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	p.c.advance() // 'function'/'func'
	if !p.c.at(token.IDENT) {
		return nil, p.unexpected("function name")
	}
	nameTok := p.c.advance()

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []symtab.Symbol
	paramIdx := make(map[symtab.Symbol]int)
	for !p.c.at(token.RPAREN) {
		if !p.c.at(token.IDENT) {
			return nil, p.unexpected("parameter list")
		}
		pt := p.c.advance()
		paramIdx[pt.Sym] = len(params)
		params = append(params, pt.Sym)
		if p.c.at(token.COMMA) {
			p.c.advance()
			p.c.skipNewlines()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	p.c.skipNewlines()

	prevParams := p.curParams
	p.curParams = paramIdx
	body, err := p.parseBlock()
	p.curParams = prevParams
	if err != nil {
		return nil, err
	}

	kinds := make([]ast.ArgKind, len(params))
	return &ast.Function{Name: nameTok.Sym, Params: params, ParamKinds: kinds, Body: body}, nil
}

func (p *Parser) parseItem() (*ast.Item, error) {
	switch p.c.cur().Kind {
	case token.BEGIN:
		p.c.advance()
		p.c.skipNewlines()
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Item{Kind: ast.ItemBegin, Action: block}, nil
	case token.END:
		p.c.advance()
		p.c.skipNewlines()
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Item{Kind: ast.ItemEnd, Action: block}, nil
	case token.LBRACE:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Item{Kind: ast.ItemRule, Action: block}, nil
	default:
		pattern, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.c.at(token.LBRACE) {
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return &ast.Item{Kind: ast.ItemRule, Pattern: pattern, Action: block}, nil
		}
		// Bare `expr` pattern: implicit `{ print $0 }`.
		pos := pattern.Pos()
		implicit := &ast.BlockStmt{List: []ast.Stmt{&ast.PrintStmt{}}}
		implicit.Position = pos
		return &ast.Item{Kind: ast.ItemRule, Pattern: pattern, Action: implicit}, nil
	}
}

// identFromToken builds an *ast.Ident from an IDENT token, resolving it
// against the enclosing function's parameter list if one is in scope.
func (p *Parser) identFromToken(t token.Token) *ast.Ident {
	id := &ast.Ident{Name: t.Sym}
	id.Position = t.Pos
	if idx, ok := p.curParams[t.Sym]; ok {
		id.IsParam = true
		id.ParamIndex = idx
	}
	return id
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.c.at(k) {
		return token.Token{}, p.unexpected(k.String())
	}
	return p.c.advance(), nil
}

package parser

import "github.com/rawklang/rawk/internal/token"

// cursor is a token-slice lookahead buffer, adapted from the teacher's
// internal/parser/cursor.go: a flat index into a pre-scanned token list
// rather than a channel or iterator, so arbitrary lookahead (needed for
// the multi-dimensional `(e1, e2) in arr` scan and the concatenation rule)
// is just index arithmetic.
type cursor struct {
	toks []token.Token
	pos  int
}

func newCursor(toks []token.Token) *cursor {
	return &cursor{toks: toks}
}

func (c *cursor) cur() token.Token {
	return c.toks[c.pos]
}

func (c *cursor) peekAt(offset int) token.Token {
	i := c.pos + offset
	if i >= len(c.toks) {
		return c.toks[len(c.toks)-1] // EOF
	}
	return c.toks[i]
}

func (c *cursor) peek() token.Token {
	return c.peekAt(1)
}

func (c *cursor) advance() token.Token {
	t := c.cur()
	if c.pos < len(c.toks)-1 {
		c.pos++
	}
	return t
}

func (c *cursor) at(k token.Kind) bool {
	return c.cur().Kind == k
}

func (c *cursor) mark() int      { return c.pos }
func (c *cursor) reset(m int)    { c.pos = m }

// skipNewlines consumes any run of NEWLINE tokens; AWK treats a newline as
// a statement terminator only in specific grammar positions (spec §4.3),
// so the parser calls this explicitly wherever a newline is insignificant
// (e.g. right after `{`, `&&`, `||`, `,`, `do`, `else`).
func (c *cursor) skipNewlines() {
	for c.at(token.NEWLINE) {
		c.advance()
	}
}

// skipTerminators consumes a run of NEWLINE and SEMI tokens, used between
// statements.
func (c *cursor) skipTerminators() {
	for c.at(token.NEWLINE) || c.at(token.SEMI) {
		c.advance()
	}
}

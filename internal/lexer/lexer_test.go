package lexer

import (
	"testing"

	"github.com/rawklang/rawk/internal/symtab"
	"github.com/rawklang/rawk/internal/token"
)

func lexKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := Lex(src, symtab.New())
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestLexNumberLiterals(t *testing.T) {
	toks, err := Lex("3.14 1e3 .5", symtab.New())
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []float64{3.14, 1000, 0.5}
	var got []float64
	for _, tok := range toks {
		if tok.Kind == token.NUMBER {
			got = append(got, tok.Num)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("number %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNumberRewindsOnFalseExponent(t *testing.T) {
	toks, err := Lex("1e+x", symtab.New())
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Kind != token.NUMBER || toks[0].Num != 1 {
		t.Fatalf("first token = %+v, want NUMBER 1", toks[0])
	}
	if toks[1].Kind != token.IDENT || toks[2].Kind != token.PLUS {
		t.Fatalf("second, third tokens = %v, %v, want identifier (the rewound e), PLUS", toks[1].Kind, toks[2].Kind)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := Lex(`"a\tb\nc\\d\"e"`, symtab.New())
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := "a\tb\nc\\d\"e"
	if toks[0].Str != want {
		t.Errorf("got %q, want %q", toks[0].Str, want)
	}
}

func TestLexStringUnknownEscapeKeepsBackslash(t *testing.T) {
	toks, err := Lex(`"a\zb"`, symtab.New())
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Str != `a\zb` {
		t.Errorf("got %q, want %q", toks[0].Str, `a\zb`)
	}
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	if _, err := Lex(`"abc`, symtab.New()); err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestLexSlashIsDivisionByDefault(t *testing.T) {
	kinds := lexKinds(t, "a / b")
	want := []token.Kind{token.IDENT, token.SLASH, token.IDENT, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexSlashIsRegexAfterMatchOperator(t *testing.T) {
	toks, err := Lex(`$0 ~ /foo.*bar/`, symtab.New())
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var re *string
	for i := range toks {
		if toks[i].Kind == token.REGEX {
			re = &toks[i].Str
		}
	}
	if re == nil {
		t.Fatal("expected a REGEX token")
	}
	if *re != "foo.*bar" {
		t.Errorf("got %q, want %q", *re, "foo.*bar")
	}
}

func TestLexRegexUnterminatedIsError(t *testing.T) {
	if _, err := Lex(`$0 ~ /abc`, symtab.New()); err == nil {
		t.Fatal("expected an error for an unterminated regex")
	}
}

func TestLexKeywordsAndIdents(t *testing.T) {
	kinds := lexKinds(t, "BEGIN function myvar")
	want := []token.Kind{token.BEGIN, token.FUNCTION, token.IDENT, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexTwoCharOperators(t *testing.T) {
	kinds := lexKinds(t, "++ -- += -= *= /= %= ^= == != <= >= && || !~")
	want := []token.Kind{
		token.INCR, token.DECR, token.ADD_ASSIGN, token.SUB_ASSIGN,
		token.MUL_ASSIGN, token.DIV_ASSIGN, token.MOD_ASSIGN, token.POW_ASSIGN,
		token.EQ, token.NE, token.LE, token.GE, token.AND, token.OR, token.NOTMATCH,
		token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexSkipsCommentsAndWhitespace(t *testing.T) {
	kinds := lexKinds(t, "x # a comment\n= 1")
	want := []token.Kind{token.IDENT, token.NEWLINE, token.ASSIGN, token.NUMBER, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexUnrecognizedCharIsError(t *testing.T) {
	if _, err := Lex("a @ b", symtab.New()); err == nil {
		t.Fatal("expected an error for an unrecognized character")
	}
}

func TestUnescapeMatchesStringEscaping(t *testing.T) {
	got := Unescape(`a\tb\n\&c\zd`)
	want := "a\tb\nc\\zd"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Package rawk is the embedding-friendly facade spec §6 describes as
// "the interface the core exposes to the driver":
// compile(program_ast, analysis) -> VmProgram and
// run(VmProgram, input_sources, stdout, stderr) -> exit_code. It chains
// the internal lexer/parser/analysis/bytecode packages, normalizes every
// error into bytecode.RuntimeError so a caller's stderr output matches
// spec §7 regardless of which stage failed, and re-exports the pieces
// (Program, InputItem, Unescape) a command-line driver needs without
// reaching into internal/.
package rawk

import (
	"io"
	"strings"

	"github.com/rawklang/rawk/internal/analysis"
	"github.com/rawklang/rawk/internal/bytecode"
	"github.com/rawklang/rawk/internal/lexer"
	"github.com/rawklang/rawk/internal/parser"
	"github.com/rawklang/rawk/internal/symtab"
)

// Program is a compiled rawk program, ready to Run.
type Program struct {
	prog *bytecode.Program
}

// InputItem is one post-program command-line argument: either a bare
// file path ("-" for stdin) or a name=value assignment (spec §6).
type InputItem = bytecode.InputItem

// Unescape applies double-quoted-string-literal escape processing to s,
// for a driver's `-v name=value` and `name=value` arguments (spec §6).
func Unescape(s string) string {
	return lexer.Unescape(s)
}

// Compile lexes, parses, analyses, and code-generates src, returning a
// Program ready for Run. The returned error is always a
// *bytecode.RuntimeError tagged with the kind of the stage that failed,
// so a driver can print it with no further inspection (spec §7).
func Compile(src string) (*Program, error) {
	syms := symtab.New()

	astProg, err := parser.Parse(src, syms)
	if err != nil {
		return nil, wrapFrontendError(err)
	}

	res, err := analysis.Analyze(astProg)
	if err != nil {
		return nil, &bytecode.RuntimeError{Kind: bytecode.KindType, Message: err.Error()}
	}

	compiled, err := bytecode.Compile(astProg, res, syms)
	if err != nil {
		kind := bytecode.KindType
		if strings.Contains(err.Error(), "unhandled") {
			kind = bytecode.KindFeature
		}
		return nil, &bytecode.RuntimeError{Kind: kind, Message: err.Error()}
	}

	return &Program{prog: compiled}, nil
}

// wrapFrontendError tags a parser.Parse failure with LexError or
// ParseError depending on which stage actually produced it: Parse calls
// lexer.Lex internally, so the two are told apart by the concrete error
// type rather than by a separate entry point.
func wrapFrontendError(err error) error {
	if _, ok := err.(*lexer.Error); ok {
		return &bytecode.RuntimeError{Kind: bytecode.KindLex, Message: err.Error()}
	}
	return &bytecode.RuntimeError{Kind: bytecode.KindParse, Message: err.Error()}
}

// Disassemble writes a human-readable bytecode listing to w, for a
// driver's `--debug` flag.
func (p *Program) Disassemble(w io.Writer) {
	bytecode.Disassemble(w, p.prog)
}

// Run executes p. preAssigns (the driver's `-F`/`-v` flags) are applied
// before BEGIN runs; items (files/stdin and name=value assignments, in
// command-line order) are applied as the per-record loop reaches them.
// Run writes record output to stdout and any fatal error message to
// stderr, and returns the process exit code.
func Run(p *Program, preAssigns, items []InputItem, stdout, stderr io.Writer) int {
	vm := bytecode.NewVM(p.prog)
	return vm.Run(preAssigns, items, stdout, stderr)
}

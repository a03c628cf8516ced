package rawk

import (
	"bytes"
	"testing"

	"github.com/rawklang/rawk/internal/bytecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndRunEndToEnd(t *testing.T) {
	prog, err := Compile(`{ print NR, $1 }`)
	require.NoError(t, err)
	require.NotNil(t, prog)

	var stdout, stderr bytes.Buffer
	code := Run(prog, nil, nil, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestCompileLexErrorIsTaggedKindLex(t *testing.T) {
	_, err := Compile(`BEGIN { x = "unterminated }`)
	require.Error(t, err)
	rtErr, ok := err.(*bytecode.RuntimeError)
	require.True(t, ok, "error should be a *bytecode.RuntimeError, got %T", err)
	assert.Equal(t, bytecode.KindLex, rtErr.Kind)
}

func TestCompileParseErrorIsTaggedKindParse(t *testing.T) {
	_, err := Compile(`BEGIN { x = * 1 }`)
	require.Error(t, err)
	rtErr, ok := err.(*bytecode.RuntimeError)
	require.True(t, ok, "error should be a *bytecode.RuntimeError, got %T", err)
	assert.Equal(t, bytecode.KindParse, rtErr.Kind)
}

func TestCompileTypeErrorIsTaggedKindType(t *testing.T) {
	_, err := Compile(`{ x = 1; x[1] = 2 }`)
	require.Error(t, err)
	rtErr, ok := err.(*bytecode.RuntimeError)
	require.True(t, ok, "error should be a *bytecode.RuntimeError, got %T", err)
	assert.Equal(t, bytecode.KindType, rtErr.Kind)
}

func TestUnescapeAppliesStringEscapes(t *testing.T) {
	assert.Equal(t, "a\tb\n", Unescape(`a\tb\n`))
}

func TestDisassembleWritesNonEmptyListing(t *testing.T) {
	prog, err := Compile(`BEGIN { print "hi" }`)
	require.NoError(t, err)
	var buf bytes.Buffer
	prog.Disassemble(&buf)
	assert.NotEmpty(t, buf.String())
}

package rawk

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// TestDisassembleSnapshots pins the `--debug` bytecode listing for a few
// representative programs, the way fixture_test.go snapshots DWScript
// interpreter output.
func TestDisassembleSnapshots(t *testing.T) {
	programs := map[string]string{
		"print_fields":  `{ print $1, $2 }`,
		"begin_end":     `BEGIN { n = 0 } { n++ } END { print n }`,
		"user_function": `function add(a, b) { return a + b } BEGIN { print add(1, 2) }`,
	}

	for name, src := range programs {
		name, src := name, src
		t.Run(name, func(t *testing.T) {
			prog, err := Compile(src)
			require.NoError(t, err)
			var buf bytes.Buffer
			prog.Disassemble(&buf)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_disasm", name), buf.String())
		})
	}
}

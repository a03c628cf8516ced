package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable bytecode listing of prog to w,
// for the `--debug` CLI flag (spec §6).
func Disassemble(w io.Writer, prog *Program) {
	for _, fn := range prog.Functions {
		fmt.Fprintf(w, "function %s\n", fn.Name)
		disasmChunk(w, fn.Chunk)
	}
	for i, chunk := range prog.Begin {
		fmt.Fprintf(w, "BEGIN #%d\n", i)
		disasmChunk(w, chunk)
	}
	for i, rule := range prog.Rules {
		fmt.Fprintf(w, "rule #%d\n", i)
		if rule.Pattern != nil {
			fmt.Fprintln(w, "  pattern:")
			disasmChunk(w, rule.Pattern)
		}
		fmt.Fprintln(w, "  action:")
		disasmChunk(w, rule.Action)
	}
	for i, chunk := range prog.End {
		fmt.Fprintf(w, "END #%d\n", i)
		disasmChunk(w, chunk)
	}
}

func disasmChunk(w io.Writer, c *Chunk) {
	for pc, instr := range c.Code {
		line := 0
		if pc < len(c.Lines) {
			line = c.Lines[pc]
		}
		fmt.Fprintf(w, "  %4d | %-16s a=%-4d b=%-4d (line %d)\n", pc, instr.Op, instr.A, instr.B, line)
	}
}

package bytecode

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rawklang/rawk/internal/analysis"
	"github.com/rawklang/rawk/internal/parser"
	"github.com/rawklang/rawk/internal/symtab"
)

func compileSrc(t *testing.T, src string) *Program {
	t.Helper()
	syms := symtab.New()
	prog, err := parser.Parse(src, syms)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := analysis.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	compiled, err := Compile(prog, res, syms)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return compiled
}

// writeTempInput writes contents to a scratch file and returns its path,
// so tests can drive the real internal/ioutil.Reader file path instead of
// stdin.
func writeTempInput(t *testing.T, contents string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "rawk-input-*.txt")
	if err != nil {
		t.Fatalf("create temp input: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(contents); err != nil {
		t.Fatalf("write temp input: %v", err)
	}
	return f.Name()
}

// runProgram compiles src and runs it with preAssigns/items, returning
// stdout and the process exit code.
func runProgram(t *testing.T, src string, preAssigns, items []InputItem) (string, int) {
	t.Helper()
	vm := NewVM(compileSrc(t, src))
	var stdout, stderr bytes.Buffer
	code := vm.Run(preAssigns, items, &stdout, &stderr)
	if stderr.Len() > 0 {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), code
}

func TestPrintFieldsAndNR(t *testing.T) {
	path := writeTempInput(t, "a b\nc d\n")
	out, code := runProgram(t, `{ print NR, $1, $2 }`, nil, []InputItem{{File: path}})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := "1 a b\n2 c d\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestBeginEndOnly(t *testing.T) {
	path := writeTempInput(t, "x\ny\n")
	out, code := runProgram(t, `BEGIN { print "start" } END { print "end" }`, nil, []InputItem{{File: path}})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if out != "start\nend\n" {
		t.Errorf("got %q", out)
	}
}

func TestBeginOnlyNeedsNoInput(t *testing.T) {
	out, code := runProgram(t, `BEGIN { print "hello" }`, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if out != "hello\n" {
		t.Errorf("got %q", out)
	}
}

func TestUserFunctionRecursion(t *testing.T) {
	src := `
function fact(n) {
	if (n <= 1) return 1
	return n * fact(n - 1)
}
BEGIN { print fact(5) }
`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "120" {
		t.Errorf("got %q, want 120", out)
	}
}

func TestArrayForInAndDelete(t *testing.T) {
	src := `
BEGIN {
	a["x"] = 1
	a["y"] = 2
	n = 0
	for (k in a) n++
	delete a["x"]
	m = 0
	for (k in a) m++
	print n, m
}
`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "2 1" {
		t.Errorf("got %q, want \"2 1\"", out)
	}
}

func TestNextSkipsRemainingRules(t *testing.T) {
	src := `
$0 ~ /skip/ { next }
{ print $0 }
`
	path := writeTempInput(t, "keep\nskip\nkeep2\n")
	out, code := runProgram(t, src, nil, []InputItem{{File: path}})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if out != "keep\nkeep2\n" {
		t.Errorf("got %q", out)
	}
}

func TestExitRunsEndOnce(t *testing.T) {
	src := `
{ if (NR == 2) exit 3; print }
END { print "done" }
`
	path := writeTempInput(t, "a\nb\nc\n")
	out, code := runProgram(t, src, nil, []InputItem{{File: path}})
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if out != "a\ndone\n" {
		t.Errorf("got %q", out)
	}
}

func TestLogicalOperatorValues(t *testing.T) {
	src := `BEGIN {
		print (1 && 1), (1 && 0), (0 && 1), (0 && 0)
		print (1 || 1), (1 || 0), (0 || 1), (0 || 0)
	}`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := "1 0 0 0\n1 1 1 0\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGsubCountAndReplacement(t *testing.T) {
	src := `BEGIN { s = "aXbXcX"; n = gsub("X", "-", s); print n, s }`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "3 a-b-c-" {
		t.Errorf("got %q", out)
	}
}

func TestSplitPopulatesArray(t *testing.T) {
	src := `BEGIN { n = split("a:b:c", parts, ":"); print n, parts[1], parts[3] }`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "3 a c" {
		t.Errorf("got %q", out)
	}
}

func TestPreAssignSetsFSBeforeSplitting(t *testing.T) {
	path := writeTempInput(t, "a:b:c\n")
	out, code := runProgram(t, `{ print $2 }`, []InputItem{{Assign: true, Name: "FS", Value: ":"}}, []InputItem{{File: path}})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "b" {
		t.Errorf("got %q, want b", out)
	}
}

func TestInlineAssignmentBetweenFiles(t *testing.T) {
	pathA := writeTempInput(t, "1\n")
	pathB := writeTempInput(t, "2\n")
	src := `{ print x, $0 }`
	items := []InputItem{
		{File: pathA},
		{Assign: true, Name: "x", Value: "set"},
		{File: pathB},
	}
	out, code := runProgram(t, src, nil, items)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := " 1\nset 2\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGetlineFromFile(t *testing.T) {
	path := writeTempInput(t, "first\nsecond\n")
	src := `{ getline line; print $0, line }`
	out, code := runProgram(t, src, nil, []InputItem{{File: path}})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if out != "first second\n" {
		t.Errorf("got %q", out)
	}
}

func TestSplitWithRegexStringSeparator(t *testing.T) {
	src := `BEGIN { n = split("a1b22c", parts, "[0-9]+"); print n, parts[1], parts[2], parts[3] }`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "3 a b c" {
		t.Errorf("got %q", out)
	}
}

func TestMatchWithRegexString(t *testing.T) {
	src := `BEGIN { print match("hello world", "wor"), RSTART, RLENGTH }`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "7 7 3" {
		t.Errorf("got %q", out)
	}
}

func TestSubstrAndIndexBuiltins(t *testing.T) {
	src := `BEGIN { print substr("hello world", 7), index("hello world", "world") }`
	out, code := runProgram(t, src, nil, nil)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out) != "world 7" {
		t.Errorf("got %q", out)
	}
}

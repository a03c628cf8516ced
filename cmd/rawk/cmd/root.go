// Package cmd is the rawk command-line driver: flag parsing, program-text
// assembly, and input-source/assignment splitting (spec §6's "external
// interfaces" — explicitly out of scope for internal/ and pkg/rawk, which
// expose compile/run and assume this glue already ran).
package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rawklang/rawk/pkg/rawk"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	fieldSep  string
	assigns   []string
	progFiles []string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "rawk [--debug] [-F sepstring] [-v name=value]... program [argument...]",
	Short: "An AWK-language text processor",
	Long: `rawk is an implementation of the AWK text-processing language: a
compiler and bytecode interpreter for pattern/action programs run against
a stream of input records.

Examples:
  # Run an inline program against a file
  rawk '{ print $1 }' access.log

  # Run a program from one or more -f files, with a field separator
  rawk -F: -f fields.awk /etc/passwd

  # Seed variables from the command line
  rawk -v OFS=, '{ print $1, $2 }' data.txt

  # Mix file arguments and name=value assignments, read stdin with -
  rawk '{ print FILENAME, x }' a.txt x=1 b.txt -`,
	DisableFlagsInUseLine: true,
	Version:               Version,
	RunE:                  runRawk,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().StringVarP(&fieldSep, "field-separator", "F", "", "set FS before the BEGIN block runs")
	rootCmd.Flags().StringArrayVarP(&assigns, "assign", "v", nil, "assign value to variable before execution (name=value)")
	rootCmd.Flags().StringArrayVarP(&progFiles, "file", "f", nil, "read program text from progfile (repeatable; concatenated in order)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "dump the compiled bytecode listing to stderr before running")

	// AWK's own option convention: the first non-flag word ends option
	// parsing (the program text may itself start with '-' once quoted).
	rootCmd.Flags().SetInterspersed(false)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var assignRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

func runRawk(_ *cobra.Command, args []string) error {
	var src string
	if len(progFiles) > 0 {
		var sb strings.Builder
		for i, path := range progFiles {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("rawk: can't open progfile %s: %w", path, err)
			}
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.Write(data)
		}
		src = sb.String()
	} else {
		if len(args) == 0 {
			return fmt.Errorf("rawk: no program text given (supply it as an argument or with -f)")
		}
		src = args[0]
		args = args[1:]
	}

	prog, err := rawk.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if debugFlag {
		prog.Disassemble(os.Stderr)
	}

	var preAssigns []rawk.InputItem
	if fieldSep != "" {
		preAssigns = append(preAssigns, rawk.InputItem{Assign: true, Name: "FS", Value: rawk.Unescape(fieldSep)})
	}
	for _, a := range assigns {
		preAssigns = append(preAssigns, parseAssignment(a))
	}

	items := make([]rawk.InputItem, 0, len(args))
	for _, a := range args {
		if assignRE.MatchString(a) {
			items = append(items, parseAssignment(a))
			continue
		}
		items = append(items, rawk.InputItem{File: a})
	}

	code := rawk.Run(prog, preAssigns, items, os.Stdout, os.Stderr)
	os.Exit(code)
	return nil
}

func parseAssignment(s string) rawk.InputItem {
	i := strings.IndexByte(s, '=')
	name, value := s[:i], s[i+1:]
	return rawk.InputItem{Assign: true, Name: name, Value: rawk.Unescape(value)}
}

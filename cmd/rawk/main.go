// Command rawk is the AWK-language processor's executable entry point.
package main

import (
	"fmt"
	"os"

	"github.com/rawklang/rawk/cmd/rawk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// Command constraintcheck checks constraint schema files and validates JSON or YAML
// documents against them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(&app{stdin: stdin, stdout: stdout, stderr: stderr})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

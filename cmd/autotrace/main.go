// Command autotrace traces scalar programs described in scenario files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/autotrace/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}

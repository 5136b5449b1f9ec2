package main

import (
	"fmt"
	"os"

	"github.com/kavaltui/kaval/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil && err.Error() != "" {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.ExitCode(err))
}

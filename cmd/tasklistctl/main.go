package main

import (
	"fmt"
	"os"

	"tasklists/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

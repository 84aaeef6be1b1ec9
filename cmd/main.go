package main

import (
	"fmt"
	"os"

	"coopcontrol/internal/cli"
)

func main() {
	if err := cli.RootCommand(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

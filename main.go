// Synthlink - client for a remote synthetic tabular data generation service.
package main

import (
	"os"

	"github.com/synthlab/synthlink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

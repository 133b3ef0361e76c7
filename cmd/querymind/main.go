// Command querymind is the entrypoint for the QueryMind CLI.
package main

import (
	"os"

	"github.com/querymind-labs/querymind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

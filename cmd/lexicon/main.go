// Command line interface entry point for the lexicon terminology service.
package main

import (
	"os"

	"github.com/lexicon-health/lexicon/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}

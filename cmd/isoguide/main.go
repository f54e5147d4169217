// Command isoguide indexes ISO 27001 guidance and answers questions about it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/karmanotes/pipeline/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

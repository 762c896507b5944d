package main

import (
	"os"

	"github.com/avlund/tend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

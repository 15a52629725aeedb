package main

import (
	"os"

	"github.com/katalvlaran/ssvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/makcandrov/math-blocks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

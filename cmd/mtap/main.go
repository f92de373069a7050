package main

import (
	"os"

	"github.com/bnema/memefi-tapper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

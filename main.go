package main

import (
	"os"

	"github.com/aknsr/linecap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

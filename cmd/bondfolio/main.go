package main

import (
	"os"

	"github.com/sjkwon/bondfolio/cmd/bondfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

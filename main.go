package main

import (
	"os"

	"github.com/magroup/magnus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/mattsolo1/grove-stack/cmd"
)

func main() {
	root := cmd.NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}

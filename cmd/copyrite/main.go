package main

import (
	"fmt"
	"os"

	"github.com/alimgiray/copyrite/cmd/copyrite/commands"
	"github.com/alimgiray/copyrite/cmd/copyrite/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}

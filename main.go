package main

import (
	"os"

	"github.com/ucf/section/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/calyx-health/formgate/cmd/formgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/clinsight/cdsengine/cmd/cdsengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/Zee-create-614/papertrader/cmd/papertrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

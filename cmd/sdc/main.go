package main

import (
	"os"

	"github.com/smartdc-forge/smartdc/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

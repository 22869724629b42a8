package main

import (
	"os"

	"github.com/jamswat/checkmk-matrix-notify/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

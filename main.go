package main

import (
	"os"

	"github.com/BorisDmv/snip-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

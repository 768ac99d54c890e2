package main

import (
	"os"

	"github.com/dshills/prdigest/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

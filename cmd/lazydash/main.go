package main

import (
	"os"

	"github.com/rebeliceyang/lazydash/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

package main

import (
	"os"

	"github.com/ceyewan/dbbridge/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}

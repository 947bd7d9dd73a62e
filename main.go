package main

import (
	"os"

	"ads-harvest/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

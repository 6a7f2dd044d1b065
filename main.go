package main

import (
	"os"

	"github.com/asaidimu/go-sift/cli"
)

func main() {
	// cobra has already reported the error on stderr
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

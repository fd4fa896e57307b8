package main

import (
	"os"

	"github.com/harrisonrobin/taskboard/pkg/cli"
)

var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}

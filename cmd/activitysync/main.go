package main

import (
	"os"

	"github.com/nhle/activity-sync/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	cli.Report(os.Stderr, err)
	os.Exit(cli.ExitCode(err))
}

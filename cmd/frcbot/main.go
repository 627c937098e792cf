// Package main is the frcbot command line tool.
package main

import (
	"fmt"
	"os"

	"go.viam.com/frcbot/cli"
)

func main() {
	if err := cli.NewApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

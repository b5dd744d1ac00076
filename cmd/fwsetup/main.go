package main

import (
	"os"

	fsapp "github.com/warptools/fwsetup/app"
)

func main() {
	fsapp.App.Reader = os.Stdin
	fsapp.App.Writer = os.Stdout
	fsapp.App.ErrWriter = os.Stderr
	if err := fsapp.App.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

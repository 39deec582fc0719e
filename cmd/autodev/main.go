package main

import (
	"fmt"
	"os"

	app "github.com/primoscope/Spotify-echo-sub014/internal"
	"github.com/primoscope/Spotify-echo-sub014/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	baseDir := app.ResolveBaseDir()

	if _, err := app.NewApp(baseDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing autodev: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

/*
Copyright © 2024 huimingz

Autocommit - AI-powered conventional commit messages
*/
package main

import (
	"os"

	"github.com/huimingz/autocommit-go/internal/cli"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	cli.SetVersionInfo(Version, GitCommit, BuildTime)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

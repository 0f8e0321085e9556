package main

import (
	"github.com/meditext/labstruct/cmd/labstruct/cmd"
)

// Build metadata, injected via -ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)
	cmd.Execute()
}

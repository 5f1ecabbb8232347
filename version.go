package main

import (
	"fmt"
	"runtime/debug"

	"github.com/colonyops/deskbell/internal/deskbell"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// buildInfo prefers ldflags values and falls back to the module and VCS
// metadata embedded by `go install`.
func buildInfo() deskbell.BuildInfo {
	info := deskbell.BuildInfo{Version: version, Commit: commit, Date: date}
	if info.Version != "dev" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			info.Date = s.Value
		}
	}
	return info
}

func versionString(info deskbell.BuildInfo) string {
	rev := info.Commit
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return fmt.Sprintf("%s (%s) %s", info.Version, rev, info.Date)
}

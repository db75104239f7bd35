// Package version reports build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/anshc022/vocahire/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return format(Version, Commit, Date, debug.ReadBuildInfo)
}

// format falls back to the module version and VCS stamp recorded by the Go
// toolchain when nothing was injected at link time.
func format(version, commit, date string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if info, ok := buildInfo(); ok && info != nil {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "none" && s.Value != "":
				commit = s.Value[:min(len(s.Value), 12)]
			case s.Key == "vcs.time" && date == "unknown" && s.Value != "":
				date = s.Value
			}
		}
	}
	return fmt.Sprintf("vocahire %s (commit=%s, date=%s, go=%s)", version, commit, date, runtime.Version())
}

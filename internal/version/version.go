package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at link time:
//
//	-ldflags "-X github.com/MrSnakeDoc/toolshelf/internal/version.Version=v0.1.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info identifies the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the link-time values. Commit and build date fall back to the
// VCS stamp the go tool embeds when they were not set.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	if info.Commit != "" && info.BuildDate != "" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromVCS(&info, bi.Settings)
	}
	return info
}

func fillFromVCS(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func (i Info) String() string {
	commit, built := i.Commit, i.BuildDate
	if commit == "" {
		commit = "none"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit %s, built %s, %s)", i.Version, commit, built, i.GoVersion)
}

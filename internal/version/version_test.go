package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromVCS(t *testing.T) {
	info := Info{Version: "v1.2.3"}
	fillFromVCS(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-03-01T10:00:00Z"},
	})

	if info.Commit != "0123456" {
		t.Errorf("Commit = %q, want 0123456", info.Commit)
	}
	if info.BuildDate != "2025-03-01T10:00:00Z" {
		t.Errorf("BuildDate = %q", info.BuildDate)
	}
}

func TestFillFromVCSKeepsLinkTimeValues(t *testing.T) {
	info := Info{Commit: "abc1234", BuildDate: "today"}
	fillFromVCS(&info, []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}})

	if info.Commit != "abc1234" || info.BuildDate != "today" {
		t.Errorf("link-time values overwritten: %+v", info)
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "dev", GoVersion: "go1.25.5"}.String()
	if !strings.Contains(s, "commit none") || !strings.Contains(s, "built unknown") {
		t.Errorf("String() = %q", s)
	}

	if got := Get(); got.Version != Version || got.GoVersion == "" {
		t.Errorf("Get() = %+v", got)
	}
}

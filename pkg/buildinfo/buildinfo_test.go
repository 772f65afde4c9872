package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestApplyVCS(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-15T10:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name       string
		in         Info
		wantCommit string
		wantTime   string
	}{
		{"fills unknown", Info{Commit: unknown, BuildTime: unknown}, "0123456789abcdef", "2026-01-15T10:30:00Z"},
		{"keeps stamped", Info{Commit: "feedface", BuildTime: "yesterday"}, "feedface", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.in
			info.applyVCS(settings)
			if info.Commit != tt.wantCommit || info.BuildTime != tt.wantTime {
				t.Errorf("got commit=%q time=%q", info.Commit, info.BuildTime)
			}
			if !info.Modified {
				t.Error("Modified not set")
			}
		})
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "v1.2.0",
		Commit:    "0123456789abcdef",
		BuildTime: "2026-01-15",
		GoVersion: "go1.24.7",
		Platform:  "linux/amd64",
	}
	got := info.String("netwatch-server")
	want := "netwatch-server v1.2.0 (commit 0123456, built 2026-01-15, go1.24.7 linux/amd64)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	info.Modified = true
	if !strings.Contains(info.String("x"), "0123456-dirty") {
		t.Errorf("dirty marker missing: %q", info.String("x"))
	}

	if got := (Info{Commit: "abc"}).ShortCommit(); got != "abc" {
		t.Errorf("ShortCommit() = %q", got)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("Get() = %+v", info)
	}
}

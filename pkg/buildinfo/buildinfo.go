// Package buildinfo exposes version metadata stamped in at build time:
//
//	go build -ldflags "-X github.com/good-yellow-bee/netwatch/pkg/buildinfo.Version=v1.2.0 \
//	  -X github.com/good-yellow-bee/netwatch/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
//
// Values not stamped fall back to the VCS settings the Go toolchain
// records in the binary.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

// Populated via -ldflags.
var (
	Version   = "dev"
	Commit    = unknown
	BuildTime = unknown
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.applyVCS(bi.Settings)
	}
	return info
}

func (i *Info) applyVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == unknown {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.BuildTime == unknown {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// ShortCommit returns the first 7 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// String formats the info for a version command of the named binary.
func (i Info) String(binary string) string {
	commit := i.ShortCommit()
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s)",
		binary, i.Version, commit, i.BuildTime, i.GoVersion, i.Platform)
}

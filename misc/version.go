// Package misc keeps build identification helpers used across the program.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "slidec"

// set by goreleaser/ldflags on release builds, otherwise derived from buildinfo
var (
	version = ""
	gitHash = ""
)

var readBuildInfo = sync.OnceFunc(func() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "" {
		version = bi.Main.Version
	}
	if gitHash == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				gitHash = s.Value
				break
			}
		}
	}
})

func GetAppName() string {
	return appName
}

func GetVersion() string {
	readBuildInfo()
	if version == "" {
		return "(devel)"
	}
	return version
}

func GetGitHash() string {
	readBuildInfo()
	if gitHash == "" {
		return "unknown"
	}
	return gitHash
}

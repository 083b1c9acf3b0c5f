package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at release time; dev builds fall back to VCS build info.
var (
	AppName  = "MediaHub"
	Version  = "0.1.0-dev"
	Revision = "HEAD"
)

func init() {
	if Revision != "HEAD" && Revision != "" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return
	}
	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision != "" {
		if modified {
			revision += "-dirty"
		}
		Revision = revision
	}
}

// Short returns a concise version string - `0.1.0 (5e23a4)`
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// Detailed returns a version string with runtime info - `0.1.0 (5e23a4; go1.23; linux/amd64)`
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func DetailedWithApp() string {
	return fmt.Sprintf("%s %s", AppName, Detailed())
}

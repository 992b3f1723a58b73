// Package version reports build information of the drizzle-go binary
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is set at build time with -ldflags
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
	// Drivers maps the linked database driver modules to their versions
	Drivers map[string]string
}

var driverModules = map[string]string{
	"github.com/lib/pq":              "postgresql",
	"github.com/go-sql-driver/mysql": "mysql",
	"github.com/mattn/go-sqlite3":    "sqlite",
}

// Get returns version information
func Get() Info {
	info := Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Drivers:   map[string]string{},
	}
	if build, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range build.Deps {
			if provider, ok := driverModules[dep.Path]; ok {
				info.Drivers[provider] = dep.Version
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("drizzle-go version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	return fmt.Sprintf(`drizzle-go version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
}

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set through -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   GetVersion(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersion falls back to the module version from the build info when no
// version was linked in.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	return "dev"
}

func (i Info) String() string {
	version := i.Version
	if len(i.GitCommit) >= 7 {
		version = fmt.Sprintf("%s-%s", version, i.GitCommit[:7])
	}

	return fmt.Sprintf("agencyflow %s (%s, %s)", version, i.GoVersion, i.Platform)
}

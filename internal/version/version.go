// Package version reports what this build of the Controller is made of.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Version is the application version.
const Version = "0.9.5"

// SaveDataRevision is the revision of the save data format this build
// understands. It is bumped whenever the format changes shape.
const SaveDataRevision = 8

const toolkitModule = "github.com/charmbracelet/bubbletea"

// Info is a snapshot of everything --version prints.
type Info struct {
	Version  string
	Commit   string
	SaveData int
	Runtime  string
	Toolkit  string
}

// Collect gathers version information from the build metadata stamped
// into the binary. Fields that cannot be determined read "unknown".
func Collect() Info {
	info := Info{
		Version:  Version,
		Commit:   "unknown",
		SaveData: SaveDataRevision,
		Runtime:  runtime.Version(),
		Toolkit:  "unknown",
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	var revision, modified string
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if modified == "true" {
			revision += " (dirty)"
		}
		info.Commit = revision
	}

	for _, dep := range build.Deps {
		if dep.Path == toolkitModule {
			info.Toolkit = "bubbletea " + dep.Version
			break
		}
	}
	return info
}

// Write prints the version report in the stable line-per-field layout
// documented in the man page.
func (i Info) Write(w io.Writer) {
	fmt.Fprintf(w, "Polychromatic %s\n", i.Version)
	fmt.Fprintf(w, "Commit: %s\n", i.Commit)
	fmt.Fprintf(w, "Save Data: %d\n", i.SaveData)
	fmt.Fprintf(w, "Runtime: %s\n", i.Runtime)
	fmt.Fprintf(w, "Toolkit: %s\n", i.Toolkit)
}

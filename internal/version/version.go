// Package version reports the build metadata of the cspledger binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Set with -ldflags "-X git.sr.ht/~jakintosh/cspledger/internal/version.version=v1.2.0".
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build describes the running binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// String renders the build on one line, as printed by "cspledger version".
func (b Build) String() string {
	return fmt.Sprintf("cspledger %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}

var (
	once    sync.Once
	current Build
)

// Current returns the linker-supplied metadata, filled in from the module's
// debug.BuildInfo where the linker left gaps.
func Current() Build {
	once.Do(func() {
		info, _ := debug.ReadBuildInfo()
		current = resolve(version, commit, date, info)
	})
	return current
}

func resolve(v, c, d string, info *debug.BuildInfo) Build {
	b := Build{
		Version: strings.TrimSpace(v),
		Commit:  strings.TrimSpace(c),
		Date:    strings.TrimSpace(d),
	}

	if info != nil {
		if placeholderVersion(b.Version) && strings.HasPrefix(info.Main.Version, "v") {
			b.Version = info.Main.Version
		}
		if b.Commit == "" {
			if rev := setting(info.Settings, "vcs.revision"); rev != "" {
				b.Commit = rev
				if setting(info.Settings, "vcs.modified") == "true" {
					b.Commit += "-dirty"
				}
			}
		}
		if b.Date == "" {
			if t := setting(info.Settings, "vcs.time"); t != "" {
				b.Date = t
				if parsed, err := time.Parse(time.RFC3339, t); err == nil {
					b.Date = parsed.UTC().Format(time.RFC3339)
				}
			}
		}
	}

	if placeholderVersion(b.Version) {
		b.Version = "dev"
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	} else if len(b.Commit) > 12 {
		b.Commit = b.Commit[:12]
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

func setting(settings []debug.BuildSetting, key string) string {
	for _, s := range settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func placeholderVersion(v string) bool {
	return v == "" || v == "dev" || v == "(devel)"
}

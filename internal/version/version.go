package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/trove"

// buildVersion is set via -ldflags "-X pkt.systems/trove/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running binary.
type Info struct {
	Module   string
	Version  string
	Revision string
	Time     time.Time
	Modified bool
}

// String renders the info as "module version (revision, time)".
func (i Info) String() string {
	out := i.Module + " " + i.Version
	if i.Revision == "" {
		return out
	}
	detail := i.Revision
	if !i.Time.IsZero() {
		detail += ", " + i.Time.UTC().Format(time.RFC3339)
	}
	if i.Modified {
		detail += ", modified"
	}
	return fmt.Sprintf("%s (%s)", out, detail)
}

// Current returns the build information of the running binary.
func Current() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) Info {
	out := Info{Module: defaultModule, Version: "v0.0.0-unknown"}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.Time = parsed
				}
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
		if len(out.Revision) > 12 {
			out.Revision = out.Revision[:12]
		}
	}
	switch {
	case strings.TrimSpace(buildVersion) != "":
		out.Version = strings.TrimSpace(buildVersion)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = info.Main.Version
	case out.Revision != "" && !out.Time.IsZero():
		out.Version = "v0.0.0-" + out.Time.UTC().Format("20060102150405") + "-" + out.Revision
	}
	return out
}

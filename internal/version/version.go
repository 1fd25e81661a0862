package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the rbfmt CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var segmentAttrs = [][]color.Attribute{
	{color.FgYellow, color.Bold},
	{color.FgGreen, color.Bold},
	{color.FgBlue, color.Bold},
}

// Colored renders v with its major, minor and patch numbers in distinct
// colours, regardless of terminal detection; callers decide whether to
// colour at all. A pre-release suffix stays plain.
func Colored(v string) string {
	core, suffix, found := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	for i, p := range parts {
		if i < len(segmentAttrs) {
			c := color.New(segmentAttrs[i]...)
			c.EnableColor()
			parts[i] = c.Sprint(p)
		}
	}
	out := strings.Join(parts, ".")
	if found {
		out += "-" + suffix
	}
	return out
}

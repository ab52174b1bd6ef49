package version

import "strings"

// Overridden at build time:
//
//	go build -ldflags "-X github.com/thomas-vilte/prdelivery/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.3.0"
	Commit  = ""
)

// FullVersion returns the version with the v prefix and, when known, the commit.
func FullVersion() string {
	v := "v" + strings.TrimPrefix(Version, "v")
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return v
}

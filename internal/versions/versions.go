package versions

import (
	"sync"

	semver "github.com/Masterminds/semver/v3"

	"github.com/rwx-research/tirag/cmd/tirag/config"
	"github.com/rwx-research/tirag/internal/messages"
)

// Version is a build version. Builds whose version is not a semantic version
// are treated as development builds.
type Version struct {
	raw    string
	parsed *semver.Version
}

func Parse(raw string) Version {
	parsed, err := semver.NewVersion(raw)
	if err != nil {
		return Version{raw: raw}
	}

	return Version{raw: raw, parsed: parsed}
}

func (v Version) Development() bool {
	return v.parsed == nil
}

// String renders `1.2.0`, `1.2.0 (beta.1)` for pre-releases, or the raw text
// followed by `(development build)`.
func (v Version) String() string {
	if v.parsed == nil {
		return v.raw + " (development build)"
	}

	release := semver.New(v.parsed.Major(), v.parsed.Minor(), v.parsed.Patch(), "", "")
	if v.parsed.Prerelease() != "" {
		return release.String() + " (" + v.parsed.Prerelease() + ")"
	}

	return release.String()
}

var current = sync.OnceValue(func() Version {
	return Parse(config.Version)
})

func Current() Version {
	return current()
}

// Describe is the system line printed at boot and by `ver`.
func Describe() string {
	return messages.ProductName + " " + Current().String()
}

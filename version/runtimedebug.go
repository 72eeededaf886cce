package version

import (
	"errors"
	"runtime/debug"
)

// Develop is reported when the binary carries no module version.
const Develop = "(devel)"

var (
	ErrNoBuildInfo    = errors.New("fetching build info failed")
	ErrEmptyBuildInfo = errors.New("build information is empty")
)

// BuildInfo returns the build information
func BuildInfo() (*debug.BuildInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrNoBuildInfo
	}

	if bi == nil {
		return nil, ErrEmptyBuildInfo
	}

	return bi, nil
}

// Main returns the version of the main module of the running binary, or Develop.
func Main() string {
	bi, err := BuildInfo()
	if err != nil || bi.Main.Version == "" {
		return Develop
	}
	return bi.Main.Version
}

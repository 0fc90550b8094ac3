// Package version holds the daemon's build version.
package version

import "github.com/blang/semver"

// CURRENT_VERSION is the daemon's own build version, reported by
// --version and logged on startup. It tracks the daemon binary, not the
// BOOP wire format, which has no version byte of its own.
var CURRENT_VERSION = semver.MustParse("0.1.0")

package types

import "github.com/Masterminds/semver/v3"

var (
	APPNAME = "edgeproxy"
	VERSION = semver.MustParse(VERSION_MAIN + VERSION_PRERELEASE)

	// VERSION_MAIN tracks the framework, not the client build it targets.
	VERSION_MAIN       = "0.4.0"
	VERSION_PRERELEASE = "-beta"

	// Client build the offset table was made for.
	ExpectedClientDate = "May 10 2013"
	ExpectedClientTime = "23:30:08"
)

// Package misc keeps build time information about the program.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker: -X sizekit/misc.version=... -X sizekit/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git hash program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name, derived from executable when not set at build time.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Package misc keeps build time information about the program.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// set by linker: -X navtree/misc.version=... -X navtree/misc.githash=...
var (
	version = "dev"
	githash = "unknown"
)

// GetAppName returns name of the running executable without extension.
func GetAppName() string {
	name := filepath.Base(os.Args[0])
	if ext := filepath.Ext(name); ext == ".exe" {
		name = strings.TrimSuffix(name, ext)
	}
	if len(name) == 0 || strings.HasSuffix(name, ".test") {
		return "navtree"
	}
	return name
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}

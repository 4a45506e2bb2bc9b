// Package misc keeps program identity shared by the CLI, configuration and
// reports.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X".
var (
	appName = ""
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name, executable name when not set at build time.
func GetAppName() string {
	if appName != "" {
		return appName
	}
	name := filepath.Base(os.Args[0])
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		return "jsxstyle"
	}
	return name
}

// GetVersion returns program version.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetGitHash returns source revision the program was built from.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

package buildinfo

import "runtime/debug"

// Set with -ldflags "-X binrent/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    Commit,
		"builtAt":   BuiltAt,
		"goVersion": goVersion(),
	}
}

func goVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		return bi.GoVersion
	}
	return "unknown"
}

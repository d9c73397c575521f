// buildinfo.go captures build metadata (version, commit) for use in --version output.
package buildinfo

// Version is injected at build time via -ldflags and defaults to dev.
var Version = "dev"

// Commit is the short git commit the binary was built from, if known.
var Commit = ""

// String renders the version line printed by 'stackup version'.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}

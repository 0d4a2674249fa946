// Package version exposes build metadata stamped through -ldflags by the
// release pipeline. A binary built with a plain `go build` reports "dev".
package version

var (
	// Tag is the release tag (for example v0.4.1); empty on dev builds.
	Tag = ""
	// Commit is the abbreviated git revision the binary was built from.
	Commit = ""
	// BuildDate is the UTC build timestamp in RFC3339 form.
	BuildDate = ""
	// Modified is "true" when the tree carried uncommitted changes.
	Modified = ""
)

// String renders the version for startup log lines and the /healthz payload:
// the tag for releases, "dev-<commit>" for builds off a clean tree with a
// trailing "*" when the tree was modified, and plain "dev" otherwise.
func String() string {
	if Tag != "" {
		return Tag
	}
	if Commit == "" {
		return "dev"
	}
	v := "dev-" + Commit
	if Modified == "true" {
		v += "*"
	}
	return v
}

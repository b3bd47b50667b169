// Package buildinfo carries identifiers injected with
// -ldflags "-X memclock/internal/buildinfo.Version=...".
package buildinfo

import "fmt"

// Name is the program name used in window titles and logs.
const Name = "memclock"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the program name and a compact build identifier.
func Short() string {
	id := "dev"
	switch {
	case Version != "" && Version != "dev":
		id = Version
	case Commit != "" && Commit != "unknown":
		id = Commit
	}
	return Name + " " + id
}

// Long returns the program name and all build identifiers on one line.
func Long() string {
	return fmt.Sprintf("%s version=%s commit=%s date=%s", Name, Version, Commit, Date)
}

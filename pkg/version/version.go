package version

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}

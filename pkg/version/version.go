package version

// Set with -ldflags "-X github.com/kpauljoseph/pagemark/pkg/version.Version=..."
var (
	Version   = "dev"
	CommitSHA = "unknown"
)

// Info is the build identity reported by the server's health check.
type Info struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func Get() Info {
	return Info{Service: "pagemark", Version: Version, Commit: CommitSHA}
}

func GetVersionInfo() string {
	return "pagemark " + Version
}

func GetDetailedVersionInfo() string {
	return "pagemark\n" +
		"Version:  " + Version + "\n" +
		"Commit:   " + CommitSHA + "\n"
}

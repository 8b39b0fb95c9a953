package metadata

// Version and CommitSHA are overridden at build time with
// -ldflags "-X github.com/adityajoshi12/testpki/glossary/metadata.Version=..."
var (
	Version   = "dev"
	CommitSHA = "unknown"
)

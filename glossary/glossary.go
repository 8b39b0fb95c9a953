package glossary

const (
	// ProgramName is the name of the binary
	ProgramName = "testpki"

	// DefaultOutputPath is the folder under the user's home that relative
	// output paths starting with it are resolved against
	DefaultOutputPath = ".testpki"

	// JSONCertExtension marks files holding a certificate wrapped in JSON
	JSONCertExtension = ".jsonCert"
)

// File names written by "testpki certificate chain"
const (
	RootCertFile         = "root-cert.pem"
	RootKeyFile          = "root-key.pem"
	IntermediateCertFile = "intermediate-cert.pem"
	IntermediateKeyFile  = "intermediate-key.pem"
	EndEntityCertFile    = "end-entity-cert.pem"
	EndEntityKeyFile     = "end-entity-key.pem"
	EndEntityBundleFile  = "end-entity.p12"
)

package exitcodes

// Exit codes for the linefix CLI
// These codes form the operational contract with scripts and CI wrappers
const (
	Success       = 0 // Successful execution
	InvalidConfig = 2 // Configuration file invalid or missing
	MissingRoot   = 3 // Root directory does not exist
	RuntimeError  = 4 // Runtime error during execution
)

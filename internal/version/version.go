package version

// Version is the semantic version of the sdc CLI and library.
const Version = "0.1.0"

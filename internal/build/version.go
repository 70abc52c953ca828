package build

// Version is stamped at release time via -ldflags.
var Version = "dev"

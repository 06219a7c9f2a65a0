package config

// Version is set at build time with
// -ldflags "-X github.com/rwx-research/tirag/cmd/tirag/config.Version=<version>".
var Version = "dev"

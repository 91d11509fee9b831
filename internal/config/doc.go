// Package config builds the installer's settings once at startup from
// defaults, an optional YAML config file, DYNWALL_* environment variables and
// command-line flags, in increasing order of precedence.
package config

// Package cli defines the Cobra command tree for the dynwall-setup installer.
// Each file registers one top-level command (install, render, probe, status,
// config, version) with the root command. Commands delegate to internal
// packages and only handle flags, configuration loading and output.
package cli

// Package answers loads the YAML answers file that replaces interactive
// prompts in unattended installs. Files are validated against an embedded
// JSON schema before any value is used.
package answers

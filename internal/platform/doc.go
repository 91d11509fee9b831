// Package platform provides the filesystem primitives the installer needs:
// permission changes, recursive ownership hand-over and atomic file writes.
package platform

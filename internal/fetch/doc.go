// Package fetch talks HTTP on behalf of the installer: it checks that a URL
// uses an http(s) scheme, probes it for liveness with a HEAD request, and
// downloads release artifacts to disk. Every call is bounded by a context
// and a per-operation timeout.
package fetch

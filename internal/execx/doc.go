// Package execx is the one place the installer starts external programs.
// Orchestration code depends on the Runner interface; Exec runs real
// processes and Recorder stands in for them in tests.
package execx

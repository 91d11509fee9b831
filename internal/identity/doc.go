// Package identity resolves who the installer is acting for. The process must
// run as root through sudo; the invoking account named by SUDO_USER owns the
// installation and runs the boot-time service.
package identity

// Package systemd builds the boot-time unit that runs the update script and
// registers it with the system service manager.
package systemd

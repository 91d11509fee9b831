package identity

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"
)

// SudoUserEnv names the variable sudo sets to the invoking account.
const SudoUserEnv = "SUDO_USER"

var (
	// ErrNotElevated is returned when the effective UID is not 0.
	ErrNotElevated = errors.New("not running as root, run the installer with sudo")
	// ErrNoSudoUser is returned when the invoking account cannot be determined
	// or is root itself.
	ErrNoSudoUser = errors.New("cannot determine the invoking user, run the installer with sudo from a regular account")
)

// User is the non-privileged account the installation belongs to.
type User struct {
	Name    string
	UID     int
	GID     int
	HomeDir string
}

// Resolver holds the process facts identity resolution depends on. The zero
// value is not usable; call NewResolver for the real process.
type Resolver struct {
	Getenv  func(string) string
	Geteuid func() int
	Lookup  func(name string) (*user.User, error)
}

// NewResolver returns a Resolver bound to the current process.
func NewResolver() *Resolver {
	return &Resolver{
		Getenv:  os.Getenv,
		Geteuid: os.Geteuid,
		Lookup:  user.Lookup,
	}
}

// Resolve checks elevation and returns the invoking user.
func (r *Resolver) Resolve() (*User, error) {
	if r.Geteuid() != 0 {
		return nil, ErrNotElevated
	}

	name := r.Getenv(SudoUserEnv)
	if name == "" || name == "root" {
		return nil, ErrNoSudoUser
	}

	u, err := r.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("looking up user %q: %w", name, err)
	}
	return fromOSUser(u)
}

// LookupUser resolves an account by name without any elevation check. Used by
// read-only commands that only need the home directory.
func (r *Resolver) LookupUser(name string) (*User, error) {
	u, err := r.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("looking up user %q: %w", name, err)
	}
	return fromOSUser(u)
}

func fromOSUser(u *user.User) (*User, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("parsing uid %q of %s: %w", u.Uid, u.Username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("parsing gid %q of %s: %w", u.Gid, u.Username, err)
	}
	if u.HomeDir == "" {
		return nil, fmt.Errorf("user %s has no home directory", u.Username)
	}
	return &User{
		Name:    u.Username,
		UID:     uid,
		GID:     gid,
		HomeDir: u.HomeDir,
	}, nil
}

// Owner returns the "user:group" pair for log output.
func (u *User) Owner() string {
	return fmt.Sprintf("%d:%d", u.UID, u.GID)
}

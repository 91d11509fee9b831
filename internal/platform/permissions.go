package platform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Permission modes used for installed files.
const (
	DirPerm         os.FileMode = 0755
	ExecutablePerm  os.FileMode = 0755
	PrivateExecPerm os.FileMode = 0700
	UnitFilePerm    os.FileMode = 0644
)

// Chmod sets file permissions.
func Chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// MakeExecutable adds the execute bit for every class that can already read
// the file, like `chmod +x` does.
func MakeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	perm := info.Mode().Perm()
	perm |= (perm & 0444) >> 2
	return Chmod(path, perm)
}

// IsExecutable reports whether the owner execute bit is set on path.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0100 != 0
}

// ChownTree changes the owner of root and everything below it. Symlinks are
// re-owned themselves, never followed.
func ChownTree(root string, uid, gid int) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		return os.Lchown(path, uid, gid)
	})
	if err != nil {
		return fmt.Errorf("changing ownership of %s to %d:%d: %w", root, uid, gid, err)
	}
	return nil
}

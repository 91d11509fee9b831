// Package source fetches the DynamicWallpaper source tree next to an
// installation with a shallow git clone.
package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urpagin/dynwall-setup/internal/execx"
)

// tmpSuffix is appended to the target dir during atomic clone.
const tmpSuffix = ".tmp"

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Clone performs a shallow clone of repoURL into targetDir. The clone goes
// to a .tmp sibling first and is renamed on success, so a failed clone never
// leaves a half-populated targetDir.
func Clone(ctx context.Context, runner execx.Runner, repoURL, targetDir string) error {
	if err := ensureGit(); err != nil {
		return err
	}
	if _, err := os.Stat(targetDir); err == nil {
		return fmt.Errorf("clone target %s already exists", targetDir)
	}

	tmpDir := targetDir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	cmd := execx.Command{Name: "git", Args: []string{"clone", "--depth=1", repoURL, tmpDir}}
	if _, err := runner.Run(ctx, cmd); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("moving clone into place: %w", err)
	}
	return nil
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := lookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}

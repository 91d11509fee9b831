package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urpagin/dynwall-setup/internal/platform"
)

// ErrTargetExists is returned when the install directory is already present.
var ErrTargetExists = errors.New("install directory already exists")

// ErrReservedName is returned when a downloaded file would land on a path
// the installation itself uses.
var ErrReservedName = errors.New("release file name clashes with the installation layout")

const (
	wallpapersDir = "wallpapers"
	sourceDir     = "src"
)

// Layout is the set of paths an installation occupies.
type Layout struct {
	Root       string
	Wallpapers string
	Script     string
	Source     string
}

// NewLayout returns the layout of an installation named dirName in home.
func NewLayout(home, dirName, scriptName string) Layout {
	root := filepath.Join(home, dirName)
	return Layout{
		Root:       root,
		Wallpapers: filepath.Join(root, wallpapersDir),
		Script:     filepath.Join(root, scriptName),
		Source:     filepath.Join(root, sourceDir),
	}
}

// Reserved reports whether a file called name directly under Root would
// collide with the script or one of the layout's directories.
func (l Layout) Reserved(name string) bool {
	switch name {
	case ".", "..", filepath.Base(l.Wallpapers), filepath.Base(l.Script), filepath.Base(l.Source):
		return true
	}
	return false
}

// Provision creates Root and Wallpapers. Root must not exist yet and its
// parent must; an existing installation is never touched.
func (l Layout) Provision() error {
	if err := os.Mkdir(l.Root, platform.DirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrTargetExists, l.Root)
		}
		return fmt.Errorf("creating install directory: %w", err)
	}
	if err := os.Mkdir(l.Wallpapers, platform.DirPerm); err != nil {
		return fmt.Errorf("creating wallpapers directory: %w", err)
	}
	return nil
}

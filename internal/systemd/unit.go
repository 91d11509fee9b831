package systemd

import (
	"fmt"
	"io"
	"strings"

	"github.com/coreos/go-systemd/v22/unit"

	"github.com/urpagin/dynwall-setup/internal/platform"
)

// DefaultUnitDir is where system-wide units are installed.
const DefaultUnitDir = "/etc/systemd/system"

// DefaultDisplay is the X display the wallpaper setter draws on.
const DefaultDisplay = ":0"

// Spec describes the oneshot unit that runs the update script.
type Spec struct {
	Description string
	Script      string // absolute path run by ExecStart
	WorkingDir  string
	User        string
	Display     string // DISPLAY value; DefaultDisplay when empty
	XAuthority  string // XAUTHORITY value, usually <home>/.Xauthority
}

// Options returns the unit file options in file order.
func (s Spec) Options() []*unit.UnitOption {
	display := s.Display
	if display == "" {
		display = DefaultDisplay
	}

	return []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", s.Description),
		unit.NewUnitOption("Unit", "Wants", "network-online.target"),
		unit.NewUnitOption("Unit", "After", "network-online.target"),

		unit.NewUnitOption("Service", "Type", "oneshot"),
		unit.NewUnitOption("Service", "ExecStart", quote(s.Script)),
		unit.NewUnitOption("Service", "WorkingDirectory", escapeSpecifiers(s.WorkingDir)),
		unit.NewUnitOption("Service", "User", s.User),
		unit.NewUnitOption("Service", "Environment", quote("DISPLAY="+display)),
		unit.NewUnitOption("Service", "Environment", quote("XAUTHORITY="+s.XAuthority)),

		unit.NewUnitOption("Install", "WantedBy", "multi-user.target"),
	}
}

// Validate checks that every field the unit needs is set.
func (s Spec) Validate() error {
	switch {
	case s.Script == "":
		return fmt.Errorf("unit spec: script path is empty")
	case s.WorkingDir == "":
		return fmt.Errorf("unit spec: working directory is empty")
	case s.User == "":
		return fmt.Errorf("unit spec: user is empty")
	case s.XAuthority == "":
		return fmt.Errorf("unit spec: XAUTHORITY is empty")
	}
	return nil
}

// Render serializes the unit file.
func Render(s Spec) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(unit.Serialize(s.Options()))
	if err != nil {
		return nil, fmt.Errorf("serializing unit: %w", err)
	}
	return data, nil
}

// WriteUnit writes the unit to path, replacing whatever was there.
func WriteUnit(path string, s Spec) error {
	data, err := Render(s)
	if err != nil {
		return err
	}
	if err := platform.WriteFileAtomic(path, data, platform.UnitFilePerm); err != nil {
		return fmt.Errorf("writing unit file %s: %w", path, err)
	}
	return nil
}

// quote escapes specifiers and wraps values containing whitespace in double
// quotes, the way systemd expects for ExecStart and Environment.
// WorkingDirectory takes the path as is and must not be quoted.
func quote(v string) string {
	v = escapeSpecifiers(v)
	if !strings.ContainsAny(v, " \t") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// escapeSpecifiers doubles % so systemd does not expand %h and friends.
func escapeSpecifiers(v string) string {
	return strings.ReplaceAll(v, "%", "%%")
}

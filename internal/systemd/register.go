package systemd

import (
	"context"
	"fmt"

	"github.com/urpagin/dynwall-setup/internal/execx"
)

// Register reloads the unit cache and enables name for boot.
func Register(ctx context.Context, runner execx.Runner, name string) error {
	if _, err := runner.Run(ctx, execx.Command{Name: "systemctl", Args: []string{"daemon-reload"}}); err != nil {
		return fmt.Errorf("reloading systemd: %w", err)
	}
	if _, err := runner.Run(ctx, execx.Command{Name: "systemctl", Args: []string{"enable", name}}); err != nil {
		return fmt.Errorf("enabling %s: %w", name, err)
	}
	return nil
}

// IsEnabled asks systemctl whether name is enabled.
func IsEnabled(ctx context.Context, runner execx.Runner, name string) bool {
	_, err := runner.Run(ctx, execx.Command{Name: "systemctl", Args: []string{"is-enabled", "--quiet", name}})
	return err == nil
}

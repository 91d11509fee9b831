package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/execx"
	"github.com/urpagin/dynwall-setup/internal/identity"
	"github.com/urpagin/dynwall-setup/internal/installer"
	"github.com/urpagin/dynwall-setup/internal/platform"
	"github.com/urpagin/dynwall-setup/internal/systemd"
)

var statusUser string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report what an installation left on disk",
	Long: `Check the install directory, client binary, update script and service unit
of an installation. Read-only; does not need root.

The account defaults to $SUDO_USER, then the current user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := statusAccount()
		if err != nil {
			return err
		}
		missing := runStatus(cmd, u)
		if missing > 0 {
			return fmt.Errorf("%d check(s) failed", missing)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusUser, "user", "", "Account whose installation is checked")
	statusCmd.Flags().String("install-dir-name", branding.InstallDir(), "Install directory name in the user's home")
	statusCmd.Flags().String("service-path", "", "Unit file path")
	rootCmd.AddCommand(statusCmd)
}

func statusAccount() (*identity.User, error) {
	r := identity.NewResolver()
	name := statusUser
	if name == "" {
		name = r.Getenv(identity.SudoUserEnv)
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		return nil, identity.ErrNoSudoUser
	}
	return r.LookupUser(name)
}

func runStatus(cmd *cobra.Command, u *identity.User) int {
	out := cmd.OutOrStdout()
	layout := installer.NewLayout(u.HomeDir, cfg.InstallDirName, branding.ScriptName())
	missing := 0
	check := func(ok bool, okMsg, missMsg string) {
		if ok {
			fmt.Fprintf(out, "  [ OK ] %s\n", okMsg)
			return
		}
		fmt.Fprintf(out, "  [MISS] %s\n", missMsg)
		missing++
	}

	fmt.Fprintf(out, "Installation of %s:\n", u.Name)
	check(isDir(layout.Root), layout.Root, layout.Root+" not found")
	check(isDir(layout.Wallpapers), layout.Wallpapers, layout.Wallpapers+" not found")

	binary := findBinary(layout)
	check(binary != "", "client binary "+binary, "no executable client binary in "+layout.Root)
	check(platform.IsExecutable(layout.Script), layout.Script, layout.Script+" missing or not executable")

	fmt.Fprintln(out, "Service:")
	unitPath := cfg.UnitPath()
	_, statErr := os.Stat(unitPath)
	check(statErr == nil, unitPath, unitPath+" not found")
	if _, err := exec.LookPath("systemctl"); err == nil {
		enabled := systemd.IsEnabled(cmd.Context(), execx.NewExec(nil), cfg.ServiceName)
		check(enabled, cfg.ServiceName+" enabled", cfg.ServiceName+" not enabled")
	}

	writeRuntimeCheck(out)
	return missing
}

// findBinary returns the first executable regular file in the install root
// other than the update script.
func findBinary(layout installer.Layout) string {
	entries, err := os.ReadDir(layout.Root)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		p := filepath.Join(layout.Root, e.Name())
		if p == layout.Script || e.IsDir() {
			continue
		}
		if platform.IsExecutable(p) {
			return p
		}
	}
	return ""
}

func writeRuntimeCheck(out io.Writer) {
	fmt.Fprintln(out, "Runtime check:")
	for _, name := range []string{"runuser", "systemctl", "feh", "git"} {
		path, err := exec.LookPath(name)
		if err != nil {
			fmt.Fprintf(out, "  [WARN] %s not found\n", name)
			continue
		}
		fmt.Fprintf(out, "  [ OK ] %s found at %s\n", name, path)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

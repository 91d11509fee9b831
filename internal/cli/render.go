package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/identity"
	"github.com/urpagin/dynwall-setup/internal/installer"
	"github.com/urpagin/dynwall-setup/internal/script"
	"github.com/urpagin/dynwall-setup/internal/systemd"
)

var (
	renderBinary      string
	renderEndpoint    string
	renderDirectory   string
	renderUser        string
	renderPassword    string
	renderShowSecrets bool
	renderUnitFor     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the update script or unit file an install would write",
	Long: `Render ` + branding.ScriptName() + ` from the given values without installing anything.
The password is redacted unless --show-secrets is set.

With --unit <account>, print the systemd unit for that account instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderUnitFor != "" {
			return renderUnit(cmd, renderUnitFor)
		}

		p := script.Params{
			Binary:    renderBinary,
			Endpoint:  renderEndpoint,
			Directory: renderDirectory,
			User:      renderUser,
			Password:  renderPassword,
			Setter:    cfg.Setter,
		}
		render := script.Preview
		if renderShowSecrets {
			render = script.Render
		}
		out, err := render(p)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderBinary, "binary", "", "Path of the client binary")
	f.StringVar(&renderEndpoint, "endpoint", "", "Server endpoint URL")
	f.StringVar(&renderDirectory, "directory", "", "Directory the wallpapers are saved in")
	f.StringVar(&renderUser, "user", "", "Endpoint username")
	f.StringVar(&renderPassword, "password", "", "Endpoint password")
	f.BoolVar(&renderShowSecrets, "show-secrets", false, "Print the password in clear")
	f.StringVar(&renderUnitFor, "unit", "", "Print the unit file for this account instead of the script")
	f.String("setter", script.DefaultSetter, "Wallpaper setter command")
	f.String("display", systemd.DefaultDisplay, "X display the service draws on")
	f.String("install-dir-name", branding.InstallDir(), "Install directory name in the user's home")
	rootCmd.AddCommand(renderCmd)
}

func renderUnit(cmd *cobra.Command, account string) error {
	u, err := identity.NewResolver().LookupUser(account)
	if err != nil {
		return err
	}
	data, err := systemd.Render(installer.UnitSpec(cfg, u))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.UnitPath(), data)
	return nil
}

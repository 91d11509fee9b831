package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urpagin/dynwall-setup/internal/answers"
	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/execx"
	"github.com/urpagin/dynwall-setup/internal/fetch"
	"github.com/urpagin/dynwall-setup/internal/identity"
	"github.com/urpagin/dynwall-setup/internal/installer"
	"github.com/urpagin/dynwall-setup/internal/prompt"
	"github.com/urpagin/dynwall-setup/internal/script"
	"github.com/urpagin/dynwall-setup/internal/systemd"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install " + branding.DisplayName() + " for the invoking user",
	Long: `Install the DynamicWallpaper client into ~/` + branding.InstallDir() + ` of the user running sudo,
write the update script, test-run it and register ` + branding.ServiceName() + ` for boot.

Must be run with sudo from a regular account. Without a terminal, pass --answers
with a YAML file holding release_url, endpoint, user and password.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	f := installCmd.Flags()
	f.String("answers", "", "YAML answers file for unattended installs")
	f.Bool("clone", false, "Also clone the source repository into <install dir>/src")
	f.String("repo-url", branding.RepoURL(), "Repository cloned with --clone")
	f.String("github-repo", branding.GitHubRepo(), "GitHub repository whose latest release is suggested")
	f.Bool("suggest-release", true, "Suggest the latest release download link before asking for one")
	f.String("install-dir-name", branding.InstallDir(), "Directory created in the user's home")
	f.String("service-path", "", "Unit file path (default /etc/systemd/system/<service-name>)")
	f.String("service-name", branding.ServiceName(), "Unit file name")
	f.String("setter", script.DefaultSetter, "Wallpaper setter command, run on the wallpapers directory")
	f.String("display", systemd.DefaultDisplay, "X display the service draws on")
	f.String("min-release", "", "Reject release URLs tagged older than this version")
	f.Duration("probe-timeout", fetch.DefaultProbeTimeout, "Timeout of each URL probe")
	f.Duration("download-timeout", fetch.DefaultDownloadTimeout, "Timeout of the release download")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	user, err := identity.NewResolver().Resolve()
	if err != nil {
		return err
	}
	log.WithField("user", user.Name).WithField("owner", user.Owner()).WithField("home", user.HomeDir).Debug("resolved invoking user")

	var a *answers.File
	if cfg.Answers != "" {
		if a, err = answers.Load(cfg.Answers); err != nil {
			return err
		}
	}

	p := prompt.New(os.Stdin, cmd.OutOrStdout())
	if err := installer.RequireInput(p, a); err != nil {
		return err
	}

	in := installer.New(cfg, user, p,
		installer.WithAnswers(a),
		installer.WithLogger(log),
		installer.WithRunner(execx.NewExec(log)),
		installer.WithFetchClient(fetch.New(
			fetch.WithProbeTimeout(cfg.ProbeTimeout),
			fetch.WithDownloadTimeout(cfg.DownloadTimeout),
			fetch.WithProgress(cmd.OutOrStdout()),
			fetch.WithLogger(log),
		)),
	)

	plan, err := in.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("installation interrupted, %s is left as is: %w",
				installer.NewLayout(user.HomeDir, cfg.InstallDirName, branding.ScriptName()).Root, err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s installed in %s; %s will run at boot.\n",
		branding.DisplayName(), plan.Layout.Root, cfg.ServiceName)
	return nil
}

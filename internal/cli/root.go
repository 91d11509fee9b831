package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configFile string
	v          = config.New()
	cfg        *config.Config
	log        = newLogger()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installer: downloads the client release, writes the update script,
test-runs it and registers a systemd service that refreshes the wallpaper at boot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version needs no configuration.
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default "+config.FilePath()+")")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// loadConfig binds the flags of the running command to their config keys
// and resolves the configuration, leniently for the config subcommands. Only the running command's flags are bound,
// so commands sharing a flag name never override each other.
func loadConfig(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if bindErr != nil || !config.IsKey(key) {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}

	// The config subcommands must work on a missing or broken file so it
	// can be created or repaired.
	if cmd.Parent() == configCmd {
		return config.Read(v, configFile, false)
	}

	c, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = c

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	return nil
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

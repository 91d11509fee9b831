package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/urpagin/dynwall-setup/internal/branding"
	"github.com/urpagin/dynwall-setup/internal/fetch"
)

var releasesTag string

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List the download links of a " + branding.DisplayName() + " release",
	Long: `Look up the latest release (or --tag) on GitHub and print the download link of
every asset, marking the one built for this machine. Paste one of these links
when install asks for the release URL. Set ` + branding.EnvVar("github_token") + ` or GITHUB_TOKEN for higher rate limits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fetch.New(
			fetch.WithProbeTimeout(cfg.ProbeTimeout),
			fetch.WithLogger(log),
		)

		var rel *fetch.Release
		var err error
		if releasesTag != "" {
			rel, err = client.ReleaseByTag(cmd.Context(), cfg.GitHubRepo, releasesTag)
		} else {
			rel, err = client.LatestRelease(cmd.Context(), cfg.GitHubRepo)
		}
		if err != nil {
			return fmt.Errorf("looking up release of %s: %w", cfg.GitHubRepo, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", cfg.GitHubRepo, rel.TagName)
		match, _ := fetch.SelectAsset(rel.Assets, runtime.GOOS, runtime.GOARCH)
		for i := range rel.Assets {
			marker := " "
			if match != nil && match.Name == rel.Assets[i].Name {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s\n", marker, rel.Assets[i].DownloadURL)
		}
		if match == nil {
			fmt.Fprintf(out, "No asset matches %s/%s.\n", runtime.GOOS, runtime.GOARCH)
		}
		return nil
	},
}

func init() {
	releasesCmd.Flags().StringVar(&releasesTag, "tag", "", "Release tag instead of the latest")
	releasesCmd.Flags().String("github-repo", branding.GitHubRepo(), "GitHub repository (owner/name)")
	rootCmd.AddCommand(releasesCmd)
}

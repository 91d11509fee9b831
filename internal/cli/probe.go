package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urpagin/dynwall-setup/internal/fetch"
)

var probeCmd = &cobra.Command{
	Use:   "probe <url>...",
	Short: "Check that URLs are well-formed and answer HTTP requests",
	Long: `Run the same checks install applies to the release and endpoint URLs:
the scheme must be http:// or https:// and a HEAD request must get any HTTP
response, error statuses included.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fetch.New(
			fetch.WithProbeTimeout(cfg.ProbeTimeout),
			fetch.WithLogger(log),
		)

		out := cmd.OutOrStdout()
		failed := 0
		for _, url := range args {
			status, err := client.Validate(cmd.Context(), url)
			if err != nil {
				fmt.Fprintf(out, "  [FAIL] %s: %v\n", url, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "  [ OK ] %s (status %d)\n", url, status)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d URL(s) failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().Duration("probe-timeout", fetch.DefaultProbeTimeout, "Timeout of each probe")
	rootCmd.AddCommand(probeCmd)
}

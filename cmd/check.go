package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/signal"
	"github.com/xrsl/endeavor/pkg/style"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>...",
	Short: "Check whether source links are reachable",
	Long: `Probe each URL with a HEAD request, following redirects.

A status below 400 is valid, 400 and above is broken, and a request that
gets no response is an error. Exits non-zero when any link is not valid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.WithInterrupt(cmd.Context())
		defer cancel()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		v := newValidator(cfg)

		failed := 0
		for _, url := range args {
			res := v.Check(ctx, url)
			if !res.OK() {
				failed++
			}
			fmt.Printf("  %-7s %s %s\n", style.Status(res.Status.String()), url, style.C(style.Gray, res.Detail))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d links not valid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

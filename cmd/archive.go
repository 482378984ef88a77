package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/signal"
	"github.com/xrsl/endeavor/pkg/style"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <url> <out.pdf>",
	Short: "Save a web page as PDF",
	Long: `Open the URL in a headless browser and print it to PDF, the same way
exhibit sources are archived during generate.

The browser is found on PATH or downloaded on first use; set browser.bin
to use a specific binary.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.WithInterrupt(cmd.Context())
		defer cancel()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newArchiver(cfg)
		if err != nil {
			return err
		}

		say("%s Archiving %s", style.C(style.Blue, "→"), args[0])
		if err := a.Archive(ctx, args[0], args[1]); err != nil {
			return err
		}
		say("%s%s", style.Success("Saved"), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/signal"
	"github.com/xrsl/endeavor/pkg/style"
)

var excludeFlag []string

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Brainstorm endeavor topics from a CV",
	Long: `Analyze a CV and print the applicant name with suggested endeavor topics.

Examples:
  endeavor topics --cv cv.md
  endeavor topics --cv cv.md --exclude "Quantum sensing for grid monitoring"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.WithInterrupt(cmd.Context())
		defer cancel()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		b, client, err := newBrainstormer(cfg)
		if err != nil {
			return err
		}
		defer closeAll(client)

		text, err := readCV(ctx, cvFlag, stdinReader())
		if err != nil {
			return err
		}
		a, err := b.Brainstorm(ctx, text, excludeFlag)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", style.B(a.FullName))
		for i, t := range a.Topics {
			fmt.Printf("  %s %s\n", style.C(style.Cyan, fmt.Sprintf("%d)", i+1)), t)
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().StringVar(&cvFlag, "cv", "", "CV file path or URL (default: paste on stdin)")
	topicsCmd.Flags().StringSliceVarP(&excludeFlag, "exclude", "x", nil, "Topics to avoid")
	rootCmd.AddCommand(topicsCmd)
}

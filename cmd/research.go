package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/signal"
	"github.com/xrsl/endeavor/pkg/style"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Find and validate sources for a topic",
	Long: `Run the exhibit pipeline for one topic: ask the research agent for source
URLs, check each link and label the valid ones 1B, 1C, ...

Nothing is written to disk.

Examples:
  endeavor research "AI-assisted triage for rural hospitals"
  endeavor research "Grid-scale battery recycling" --sources 8 --rounds 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.WithInterrupt(cmd.Context())
		defer cancel()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, client, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		defer closeAll(client)

		topic := strings.Join(args, " ")
		say("%s Researching %s", style.C(style.Blue, "→"), style.B(topic))
		report, err := p.Build(ctx, topic)
		if err != nil {
			return err
		}

		for _, c := range report.Candidates {
			fmt.Printf("  %-7s %s %s\n", style.Status(c.Status.String()), c.URL, style.C(style.Gray, c.Detail))
		}
		fmt.Println()
		if report.Degraded != nil {
			fmt.Printf("%s%v\n", style.Warning("Research failed"), report.Degraded)
		}
		if len(report.Exhibits) == 0 {
			fmt.Println("No exhibits.")
			return nil
		}
		for _, e := range report.Exhibits {
			fmt.Printf("  %s %s\n", style.C(style.Cyan, e.Citation()), e.SourceURL)
		}
		if cfg.ResearchRounds > 1 {
			say("\n%d exhibits after %d round(s)", len(report.Exhibits), report.Rounds)
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().IntVar(&sourcesFlag, "sources", 0, "Candidate sources per research round (overrides config)")
	researchCmd.Flags().IntVar(&roundsFlag, "rounds", 0, "Research rounds to reach the source count (overrides config)")
	rootCmd.AddCommand(researchCmd)
}

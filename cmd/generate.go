package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/runner"
	"github.com/xrsl/endeavor/pkg/signal"
	"github.com/xrsl/endeavor/pkg/style"
)

var (
	cvFlag        string
	topicFlag     string
	nameFlag      string
	noArchiveFlag bool
	sourcesFlag   int
	roundsFlag    int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a proposed endeavor statement from a CV",
	Long: `Analyze a CV, pick an endeavor topic, research supporting sources and
write the full statement with exhibits.

The CV is read from --cv (file path or URL; .html and .yaml files are
converted to text) or pasted on stdin. Five topics are suggested; choose
one by number or enter r for new suggestions.

Output goes to <output_dir>/<Applicant_Name>/:
  proposed_endeavor_<name>_<timestamp>.pdf
  exhibit1B/source_material.pdf ...
  exhibits.yaml

Examples:
  endeavor generate --cv cv.md
  endeavor generate --cv https://example.com/cv.html -a claude-sonnet-4
  endeavor generate --name "Jane Doe" --topic "AI triage for rural clinics"
  endeavor generate --cv cv.md --no-archive --sources 8 --rounds 2`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&cvFlag, "cv", "", "CV file path or URL (default: paste on stdin)")
	f.StringVarP(&topicFlag, "topic", "t", "", "Use this topic and skip brainstorming")
	f.StringVarP(&nameFlag, "name", "n", "", "Applicant name (required with --topic unless --cv is given)")
	f.BoolVar(&noArchiveFlag, "no-archive", false, "Skip archiving exhibit pages")
	f.IntVar(&sourcesFlag, "sources", 0, "Candidate sources per research round (overrides config)")
	f.IntVar(&roundsFlag, "rounds", 0, "Research rounds to reach the source count (overrides config)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.WithInterrupt(cmd.Context())
	defer cancel()

	if topicFlag != "" && nameFlag == "" && cvFlag == "" {
		return fmt.Errorf("--topic needs --name or --cv to identify the applicant")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exhibits, researchClient, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	composer, composeClient, err := newComposer(cfg)
	if err != nil {
		closeAll(researchClient)
		return err
	}
	defer closeAll(researchClient, composeClient)

	exporter, err := newExporter(cfg, !noArchiveFlag)
	if err != nil {
		return err
	}

	in := stdinReader()
	stages := runner.Stages{
		Exhibits: exhibits,
		Composer: composer,
		Exporter: exporter,
		Chooser:  promptChooser{in: in},
	}

	needCV := topicFlag == "" || nameFlag == ""
	if needCV {
		b, client, err := newBrainstormer(cfg)
		if err != nil {
			return err
		}
		defer closeAll(client)
		stages.Brainstormer = b
	}
	r := runner.New(stages,
		runner.WithSections(cfg.Sections),
		runner.WithProgress(printProgress),
		runner.WithLogger(clog.For("runner")),
	)

	applicant, topic := nameFlag, topicFlag
	if needCV {
		text, err := readCV(ctx, cvFlag, in)
		if err != nil {
			return err
		}
		if topic == "" {
			applicant, topic, err = r.ChooseTopic(ctx, text)
			if err != nil {
				return err
			}
			if nameFlag != "" {
				applicant = nameFlag
			}
		} else {
			a, err := stages.Brainstormer.Brainstorm(ctx, text, nil)
			if err != nil {
				return fmt.Errorf("identify applicant: %w", err)
			}
			applicant = a.FullName
		}
	}

	say("\n%s %s", style.C(style.Blue, "→"), style.B(topic))
	out, err := r.Generate(ctx, applicant, topic)
	if out.Document != nil || len(out.Report.Exhibits) > 0 {
		printOutcome(out)
	}
	return err
}

func printProgress(e runner.Event) {
	switch {
	case e.Total > 0:
		say("%s %s %s", style.C(style.Blue, "→"), style.C(style.Gray, fmt.Sprintf("[%d/%d]", e.Current, e.Total)), e.Message)
	default:
		say("%s %s", style.C(style.Blue, "→"), e.Message)
	}
}

func printOutcome(out runner.Outcome) {
	say("")
	if out.Report.Degraded != nil {
		say("%sresearch failed, the statement has no exhibits (%v)", style.Warning("Warning"), out.Report.Degraded)
	}
	for _, rej := range out.Report.Rejected() {
		say("  %s %s %s", style.Status(rej.Status.String()), rej.URL, style.C(style.Gray, rej.Detail))
	}
	for _, e := range out.Report.Exhibits {
		say("  %s %s", style.C(style.Cyan, e.Citation()), e.SourceURL)
	}
	if out.Export.Document != "" {
		say("\n%s%s", style.Success("Saved"), out.Export.Document)
		say("  manifest %s", out.Export.Manifest)
	}
	for _, f := range out.Export.Failed() {
		say("%sExhibit %s not archived: %s", style.Warning("Warning"), f.Label, f.Error)
	}
}

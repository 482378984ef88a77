package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/document"
	"github.com/xrsl/endeavor/pkg/style"
	"github.com/xrsl/endeavor/pkg/utils"
)

var renderOutFlag string

var renderCmd = &cobra.Command{
	Use:   "render <body.md>",
	Short: "Render an edited statement body to PDF",
	Long: `Assemble a PDF from a markdown body, for example after editing the
generated text by hand. Each "## HEADING" line starts a section.

Examples:
  endeavor render body.md --name "Jane Doe" --topic "AI triage for rural clinics"
  endeavor render body.md -n "Jane Doe" -t "..." --out Jane_Doe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if nameFlag == "" || topicFlag == "" {
			return fmt.Errorf("--name and --topic are required")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		text, err := utils.ReadFile(args[0])
		if err != nil {
			return err
		}

		doc := document.New(nameFlag, topicFlag)
		for _, s := range document.ParseBody(text) {
			doc.Append(s.Title, s.Body)
		}
		if len(doc.Sections()) == 0 {
			return fmt.Errorf("%s has no content", args[0])
		}

		dir := renderOutFlag
		if dir == "" {
			dir = cfg.OutputDir
		}
		path, err := newAssembler(cfg).Write(doc, dir)
		if err != nil {
			return err
		}
		say("%s%s", style.Success("Saved"), path)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Applicant name")
	renderCmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Endeavor topic")
	renderCmd.Flags().StringVar(&renderOutFlag, "out", "", "Output folder (default: output_dir)")
	rootCmd.AddCommand(renderCmd)
}

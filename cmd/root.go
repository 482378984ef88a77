package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/config"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/style"
)

var (
	quiet             bool
	verbose           bool
	configPath        string
	agentFlag         string
	researchAgentFlag string
	outputDirFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "endeavor",
	Short: "Generate NIW proposed endeavor statements with AI",
	Long: `endeavor turns a CV into a Proposed Endeavor statement for a National
Interest Waiver petition.

It brainstorms endeavor topics from the CV, researches and validates
supporting sources, writes the statement section by section with inline
exhibit citations, and saves the PDF together with an archived copy of
every cited source.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clog.SetVerbose(verbose)
		clog.SetQuiet(quiet)
	},
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Failure("Error")+err.Error())
		os.Exit(1)
	}
}

func init() {
	// Setup Typer-style help formatting
	style.SetupHelp(rootCmd)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&configPath, "config", "c", config.DefaultFile, "Config file")
	pf.StringVarP(&agentFlag, "agent", "a", "", "Completion agent (overrides config)")
	pf.StringVar(&researchAgentFlag, "research-agent", "", "Search-grounded research agent (overrides config)")
	pf.StringVarP(&outputDirFlag, "output-dir", "o", "", "Output root folder (overrides config)")
	registerFlagCompletions()
}

// say prints a progress line unless --quiet is set.
func say(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

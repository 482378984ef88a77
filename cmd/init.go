package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/style"
	"github.com/xrsl/endeavor/pkg/utils"
	"github.com/xrsl/endeavor/pkg/workflow"
)

var resetFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize endeavor in this directory",
	Long: `Initialize endeavor configuration and prompt templates.

Creates:
  .endeavor.yaml             Configuration file
  .endeavor/prompts/         Prompt templates (brainstorm, research, compose)

Edit the templates to change what the agents are asked. Use -r to restore
the bundled templates.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&resetFlag, "reset", "r", false, "Overwrite prompt templates with the bundled defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	created, err := store.SaveDefaults(ai.DefaultAgent(), ai.DefaultResearchAgent())
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("%s Created %s\n", style.C(style.Green, "✓"), store.Path())
	} else {
		fmt.Printf("%s Config %s\n", style.C(style.Green, "✓"), style.C(style.Gray, store.Path()))
	}

	dir, err := store.Get("prompts_dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = workflow.DefaultDir
	}
	if resetFlag {
		err = workflow.Reset(dir)
	} else {
		err = workflow.Init(dir)
	}
	if err != nil {
		return fmt.Errorf("write prompts: %w", err)
	}
	fmt.Printf("%s Prompts in %s\n", style.C(style.Green, "✓"), dir)

	// Keep the tool's working folder out of git, unless prompts live elsewhere.
	if dir == workflow.DefaultDir {
		if err := utils.EnsureGitignore(filepath.Dir(workflow.DefaultDir)); err != nil {
			fmt.Printf("  %s%v\n", style.Warning("Warning"), err)
		}
	}

	fmt.Printf("\n%s\n", style.C(style.Green, style.B("Ready!")))
	fmt.Printf("  %s    Check fonts, browser and keys\n", style.C(style.Cyan, "endeavor doctor"))
	fmt.Printf("  %s    Write a statement\n\n", style.C(style.Cyan, "endeavor generate --cv <file>"))
	return nil
}

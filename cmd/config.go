package cmd

import (
	"bufio"
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/config"
	"github.com/xrsl/endeavor/pkg/search"
	"github.com/xrsl/endeavor/pkg/style"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage endeavor configuration",
	Long: `Interactive agent setup or direct config access.

Run without subcommand to choose the agents:
  endeavor config

Or use subcommands:
  endeavor config list
  endeavor config get <key>
  endeavor config set <key> <value>`,
	RunE: runConfigWizard,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value in .endeavor.yaml.

Examples:
  endeavor config set agent claude-sonnet-4
  endeavor config set research_agent search:gemini-2.5-pro
  endeavor config set sources 8
  endeavor config set browser.paper Letter
  endeavor config set sections "Introduction, National Importance, Conclusion"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.New(configPath)
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := store.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		value, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n", style.C(style.Cyan, style.B("endeavor config")))
		fmt.Printf("%s\n", style.C(style.Gray, store.Path()))

		all := store.All()
		keys := config.SortedKeys(all)
		// Top-level keys first, then one block per group.
		slices.SortStableFunc(keys, func(a, b string) int {
			return cmp.Compare(strings.Count(a, "."), strings.Count(b, "."))
		})
		group := "general"
		fmt.Printf("\n%s\n", style.C(style.Cyan, group))
		for _, key := range keys {
			g, name := "general", key
			if i := strings.Index(key, "."); i != -1 {
				g, name = key[:i], key[i+1:]
			}
			if g != group {
				group = g
				fmt.Printf("\n%s\n", style.C(style.Cyan, g))
			}
			printConfigRow(name, all[key], defaultHint(key))
		}
		fmt.Println()
		return nil
	},
}

func defaultHint(key string) string {
	switch key {
	case "agent":
		return "auto: " + ai.DefaultAgent()
	case "research_agent":
		return "auto: " + ai.DefaultResearchAgent()
	case "sections":
		return "standard six sections"
	case "browser.bin":
		return "auto-detect or download"
	case "fonts.regular", "fonts.bold", "fonts.italic":
		return "DejaVu Sans"
	}
	return ""
}

func printConfigRow(key, value, defaultHint string) {
	if value == "" {
		if defaultHint != "" {
			fmt.Printf("  %-20s %s\n", key, style.C(style.Gray, "("+defaultHint+")"))
		} else {
			fmt.Printf("  %-20s %s\n", key, style.C(style.Gray, "(not set)"))
		}
	} else {
		fmt.Printf("  %-20s %s\n", key, style.C(style.Green, value))
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

type modelOption struct {
	name string
	note string
}

// buildModelList returns a flat list of all available agents with notes
func buildModelList() []modelOption {
	var models []modelOption

	// CLI agents (if available)
	if ai.IsClaudeCLIAvailable() {
		models = append(models, modelOption{"claude-code", "uses CLI-configured model"})
	}
	if ai.IsGeminiCLIAvailable() {
		models = append(models, modelOption{"gemini-cli", "uses CLI-configured model"})
	}

	// API models
	for _, m := range ai.SupportedModels() {
		models = append(models, modelOption{m, "requires " + ai.APIKeyEnv(m)})
	}
	return models
}

func buildResearchList() []modelOption {
	models := make([]modelOption, 0, len(search.SupportedAgents))
	for _, m := range search.SupportedAgents {
		models = append(models, modelOption{"search:" + m, "Google Search grounding, requires GEMINI_API_KEY"})
	}
	return models
}

// pickModel prints a numbered menu and returns the chosen name, or current
// when the input is empty or out of range.
func pickModel(reader *bufio.Reader, title string, models []modelOption, current string) string {
	currentIdx := 0
	for i, m := range models {
		if m.name == current {
			currentIdx = i
			break
		}
	}

	fmt.Printf("%s %s\n", style.C(style.Green, "?"), title)
	for i, m := range models {
		marker := "   "
		if i == currentIdx {
			marker = "  " + style.C(style.Green, "→")
		}
		fmt.Printf("%s%s %s", marker, style.C(style.Cyan, fmt.Sprintf("%d)", i+1)), m.name)
		if m.note != "" {
			fmt.Printf(" %s", style.C(style.Gray, "("+m.note+")"))
		}
		fmt.Println()
	}
	fmt.Printf("\n  Choice %s: ", style.C(style.Cyan, fmt.Sprintf("[%d]", currentIdx+1)))

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(models) {
		return models[idx-1].name
	}
	return models[currentIdx].name
}

func runConfigWizard(cmd *cobra.Command, args []string) error {
	reader := stdinReader()
	store, err := config.New(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n\n", style.C(style.Cyan, style.B("endeavor setup")))

	current, _ := store.Get("agent")
	if current == "" {
		current = ai.DefaultAgent()
	}
	agent := pickModel(reader, "Writing agent (topics and sections)", buildModelList(), current)
	if err := store.Set("agent", agent); err != nil {
		return err
	}
	fmt.Printf("  Using %s\n\n", style.C(style.Cyan, agent))

	current, _ = store.Get("research_agent")
	if current == "" {
		current = ai.DefaultResearchAgent()
	}
	researchAgent := pickModel(reader, "Research agent (source URLs)", buildResearchList(), current)
	if err := store.Set("research_agent", researchAgent); err != nil {
		return err
	}
	fmt.Printf("  Using %s\n\n", style.C(style.Cyan, researchAgent))

	fmt.Printf("%s Try: %s\n\n", style.C(style.Green, style.B("Ready!")), style.C(style.Cyan, "endeavor generate --cv <file>"))
	return nil
}

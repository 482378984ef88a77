package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/archive"
	"github.com/xrsl/endeavor/pkg/document"
	"github.com/xrsl/endeavor/pkg/style"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system setup for endeavor generate",
	Long:  `Verify the config, fonts, browser and agent credentials needed for endeavor generate.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s Checking endeavor setup\n\n", style.C(style.Blue, "→"))

	allGood := true
	ok := func(format string, a ...any) {
		fmt.Printf("%s %s\n", style.C(style.Green, "✓"), fmt.Sprintf(format, a...))
	}
	bad := func(format string, a ...any) {
		fmt.Printf("%s %s\n", style.C(style.Red, "✗"), fmt.Sprintf(format, a...))
		allGood = false
	}
	warn := func(format string, a ...any) {
		fmt.Printf("%s %s\n", style.C(style.Yellow, "⚠"), fmt.Sprintf(format, a...))
	}

	// Check 1: config
	cfg, err := loadConfig(cmd)
	if err != nil {
		bad("config: %v", err)
		return fmt.Errorf("setup issues detected")
	}
	ok("config valid (%s)", configPath)

	// Check 2: fonts
	fonts := document.FindFonts(document.Fonts(cfg.Fonts))
	if err := fonts.Check(); err != nil {
		bad("fonts: %v", err)
		fmt.Printf("  Install DejaVu Sans (e.g. apt install fonts-dejavu-core) or set fonts.regular\n")
	} else {
		ok("font %s", fonts.Regular)
		if fonts.Bold == "" {
			warn("no bold font, headings use the regular font")
		}
	}

	// Check 3: browser for exhibit archives
	if path, found := archive.NewRodBrowser(cfg.Browser.Bin, cfg.Browser.Headless).LookPath(); found {
		ok("browser %s", path)
	} else {
		warn("no Chrome/Chromium found, one is downloaded on first archive")
	}

	fmt.Println()

	// Check 4: agents
	fmt.Printf("%s Checking agents\n\n", style.C(style.Blue, "→"))
	for _, a := range []struct{ role, agent string }{
		{"writing", cfg.Agent},
		{"research", cfg.ResearchAgent},
	} {
		checkAgent(a.role, a.agent, ok, bad)
	}

	fmt.Println()

	if !allGood {
		return fmt.Errorf("setup issues detected")
	}
	fmt.Printf("%s Setup OK\n", style.C(style.Green, "✓"))
	return nil
}

func checkAgent(role, agent string, ok, bad func(string, ...any)) {
	if ai.IsAgentCLI(agent) {
		name := "claude"
		if strings.HasPrefix(agent, "gemini-cli") {
			name = "gemini"
		}
		if _, err := exec.LookPath(name); err != nil {
			bad("%s agent %s: %s not found in PATH", role, agent, name)
			return
		}
		ok("%s agent %s", role, agent)
		return
	}
	if !ai.IsAgentSupported(agent) {
		bad("%s agent %s is not supported", role, agent)
		return
	}
	env := ai.APIKeyEnv(agent)
	if os.Getenv(env) == "" {
		bad("%s agent %s: %s not set", role, agent, env)
		return
	}
	ok("%s agent %s (%s set)", role, agent, env)
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/archive"
	"github.com/xrsl/endeavor/pkg/compose"
	"github.com/xrsl/endeavor/pkg/config"
	"github.com/xrsl/endeavor/pkg/cv"
	"github.com/xrsl/endeavor/pkg/document"
	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/export"
	"github.com/xrsl/endeavor/pkg/linkcheck"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/pipeline"
	"github.com/xrsl/endeavor/pkg/research"
	"github.com/xrsl/endeavor/pkg/runner"
	"github.com/xrsl/endeavor/pkg/style"
	"github.com/xrsl/endeavor/pkg/workflow"
)

// openStore builds the layered config for this invocation with the global
// flags applied on top.
func openStore(cmd *cobra.Command) (*config.Store, error) {
	store, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	overrides := []struct{ flag, key, value string }{
		{"agent", "agent", agentFlag},
		{"research-agent", "research_agent", researchAgentFlag},
		{"output-dir", "output_dir", outputDirFlag},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			store.Override(o.key, o.value)
		}
	}
	return store, nil
}

// loadConfig opens the store and decodes it, resolving unset agents to the
// best one installed.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Lookup("sources") != nil && cmd.Flags().Changed("sources") {
		n, _ := cmd.Flags().GetInt("sources")
		store.Override("sources", n)
	}
	if cmd.Flags().Lookup("rounds") != nil && cmd.Flags().Changed("rounds") {
		n, _ := cmd.Flags().GetInt("rounds")
		store.Override("research_rounds", n)
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Agent == "" {
		cfg.Agent = ai.DefaultAgent()
	}
	if cfg.ResearchAgent == "" {
		cfg.ResearchAgent = ai.DefaultResearchAgent()
	}
	clog.Debug("config loaded", "path", store.Path(), "agent", cfg.Agent, "research_agent", cfg.ResearchAgent)
	return cfg, nil
}

func newClient(agent string, opts ...ai.Option) (ai.Client, error) {
	client, err := ai.NewClient(agent, opts...)
	if err != nil {
		return nil, errs.Config("agent", fmt.Errorf("%s: %w", agent, err))
	}
	return client, nil
}

func newBrainstormer(cfg *config.Config) (*research.Brainstormer, ai.Client, error) {
	client, err := newClient(cfg.Agent, ai.JSON())
	if err != nil {
		return nil, nil, err
	}
	b := research.NewBrainstormer(client,
		research.WithPrompts(workflow.New(cfg.PromptsDir)),
		research.WithTimeout(cfg.UpstreamTimeout),
		research.WithLogger(clog.For("research")),
	)
	return b, client, nil
}

func newPipeline(cfg *config.Config) (*pipeline.Pipeline, ai.Client, error) {
	client, err := newClient(cfg.ResearchAgent)
	if err != nil {
		return nil, nil, err
	}
	researcher := research.NewResearcher(client,
		research.WithPrompts(workflow.New(cfg.PromptsDir)),
		research.WithCount(cfg.Sources),
		research.WithTimeout(cfg.UpstreamTimeout),
		research.WithLogger(clog.For("research")),
	)
	p := pipeline.New(researcher, newValidator(cfg),
		pipeline.WithTarget(cfg.Sources),
		pipeline.WithRounds(cfg.ResearchRounds),
		pipeline.WithLogger(clog.For("pipeline")),
	)
	return p, client, nil
}

func newValidator(cfg *config.Config) *linkcheck.Validator {
	return linkcheck.New(
		linkcheck.WithTimeout(cfg.LinkTimeout),
		linkcheck.WithLogger(clog.For("linkcheck")),
	)
}

func newComposer(cfg *config.Config) (*compose.Composer, ai.Client, error) {
	client, err := newClient(cfg.Agent)
	if err != nil {
		return nil, nil, err
	}
	c := compose.New(client,
		compose.WithPrompts(workflow.New(cfg.PromptsDir)),
		compose.WithTimeout(cfg.UpstreamTimeout),
		compose.WithLogger(clog.For("compose")),
	)
	return c, client, nil
}

func newArchiver(cfg *config.Config) (*archive.Archiver, error) {
	paper, err := archive.PaperByName(cfg.Browser.Paper)
	if err != nil {
		return nil, err
	}
	return archive.New(archive.NewRodBrowser(cfg.Browser.Bin, cfg.Browser.Headless),
		archive.WithPaper(paper),
		archive.WithNavigationTimeout(cfg.Browser.NavigationTimeout),
		archive.WithSettle(cfg.Browser.Settle),
		archive.WithLogger(clog.For("archive")),
	), nil
}

func newAssembler(cfg *config.Config) *document.Assembler {
	fonts := document.FindFonts(document.Fonts(cfg.Fonts))
	return document.NewAssembler(
		document.NewPDFRenderer(fonts, cfg.Browser.Paper),
		document.WithLogger(clog.For("document")),
	)
}

func newExporter(cfg *config.Config, withArchive bool) (*export.Controller, error) {
	// A nil archiver records every exhibit as not archived.
	var pages export.PageArchiver
	if withArchive {
		a, err := newArchiver(cfg)
		if err != nil {
			return nil, err
		}
		pages = a
	}
	return export.New(cfg.OutputDir, newAssembler(cfg), pages,
		export.WithLogger(clog.For("export")),
	), nil
}

// readCV loads the CV from source, or asks for it to be pasted when source
// is empty.
func readCV(ctx context.Context, source string, in *bufio.Reader) (string, error) {
	if source != "" {
		return cv.Load(ctx, source)
	}
	fmt.Println("Paste the CV text, then enter a line with only END (or press Ctrl-D):")
	var b strings.Builder
	for {
		line, err := in.ReadString('\n')
		if strings.TrimSpace(line) == "END" {
			break
		}
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errs.Filesystem("cv.stdin", err)
		}
	}
	return cv.Read(strings.NewReader(b.String()), cv.Text)
}

// promptChooser shows the numbered topic menu on stdout and reads the
// selection from in.
type promptChooser struct {
	in *bufio.Reader
}

func (p promptChooser) Choose(ctx context.Context, applicant string, topics []string) (int, error) {
	fmt.Printf("\nApplicant: %s\n\n", style.C(style.Cyan, applicant))
	for i, t := range topics {
		fmt.Printf("  %s %s\n", style.C(style.Cyan, fmt.Sprintf("%d)", i+1)), t)
	}
	fmt.Printf("  %s %s\n", style.C(style.Cyan, "r)"), style.C(style.Gray, "suggest different topics"))

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Printf("\n%s Choose a topic [1-%d]: ", style.C(style.Green, "?"), len(topics))
		line, err := p.in.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "r" {
			return runner.Regenerate, nil
		}
		if n, convErr := strconv.Atoi(choice); convErr == nil && n >= 1 && n <= len(topics) {
			return n - 1, nil
		}
		if err != nil {
			return 0, errs.Config("choose", fmt.Errorf("no topic selected"))
		}
		fmt.Printf("  Enter a number from 1 to %d, or r\n", len(topics))
	}
}

func stdinReader() *bufio.Reader {
	return bufio.NewReader(os.Stdin)
}

func closeAll(clients ...ai.Client) {
	for _, c := range clients {
		if c != nil {
			c.Close()
		}
	}
}

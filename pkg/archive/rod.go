package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// RodBrowser launches a fresh headless Chrome for every session.
type RodBrowser struct {
	Bin      string // empty to look up or download a browser
	Headless bool
}

// NewRodBrowser returns a headless RodBrowser.
func NewRodBrowser(bin string, headless bool) *RodBrowser {
	return &RodBrowser{Bin: bin, Headless: headless}
}

// LookPath reports the browser binary that would be used, if one is
// installed locally.
func (b *RodBrowser) LookPath() (string, bool) {
	if b.Bin != "" {
		return b.Bin, true
	}
	return launcher.LookPath()
}

func (b *RodBrowser) Open(ctx context.Context) (Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(b.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080")
	if b.Bin != "" {
		l = l.Bin(b.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return &rodSession{launcher: l, browser: browser}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (s *rodSession) Print(ctx context.Context, url string, opts PrintOptions) ([]byte, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	nav := page.Timeout(opts.NavigationTimeout)
	if err := nav.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for load: %w", err)
	}

	if opts.Settle > 0 {
		// Late scripts that never go idle are not a failure; print what loaded.
		if err := page.WaitIdle(opts.Settle); err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	paper := opts.Paper
	if paper.Width == 0 {
		paper = A4
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      gson.Num(paper.Width),
		PaperHeight:     gson.Num(paper.Height),
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

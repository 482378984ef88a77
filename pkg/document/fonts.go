package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xrsl/endeavor/pkg/errs"
)

// Fonts are TrueType files with Unicode coverage. Regular is required.
type Fonts struct {
	Regular string `mapstructure:"regular" yaml:"regular,omitempty"`
	Bold    string `mapstructure:"bold" yaml:"bold,omitempty"`
	Italic  string `mapstructure:"italic" yaml:"italic,omitempty"`
}

// fontDirs are searched by FindFonts, in order.
var fontDirs = []string{
	".",
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/dejavu",
	"/usr/share/fonts/TTF",
	"/usr/local/share/fonts",
	"/Library/Fonts",
	"/opt/homebrew/share/fonts",
}

// FindFonts fills unset entries of f with DejaVu Sans files found in common
// locations.
func FindFonts(f Fonts) Fonts {
	fill := func(cur *string, file string) {
		if *cur != "" {
			return
		}
		for _, dir := range fontDirs {
			path := filepath.Join(dir, file)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				*cur = path
				return
			}
		}
	}
	fill(&f.Regular, "DejaVuSans.ttf")
	fill(&f.Bold, "DejaVuSans-Bold.ttf")
	fill(&f.Italic, "DejaVuSans-Oblique.ttf")
	return f
}

type fontData struct {
	regular, bold, italic []byte
}

// load reads the configured files. A missing regular font, or a configured
// bold or italic file that cannot be read, is ErrResourceMissing.
func (f Fonts) load() (fontData, error) {
	if f.Regular == "" {
		return fontData{}, errs.ResourceMissing("document.fonts", fmt.Errorf("no regular font configured; set fonts.regular to a TrueType file such as DejaVuSans.ttf"))
	}
	var fd fontData
	var err error
	if fd.regular, err = readFont(f.Regular); err != nil {
		return fontData{}, err
	}
	if f.Bold != "" {
		if fd.bold, err = readFont(f.Bold); err != nil {
			return fontData{}, err
		}
	}
	if f.Italic != "" {
		if fd.italic, err = readFont(f.Italic); err != nil {
			return fontData{}, err
		}
	}
	return fd, nil
}

func readFont(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.ResourceMissing("document.fonts", fmt.Errorf("font %s: %w", path, err))
	}
	if len(b) == 0 {
		return nil, errs.ResourceMissing("document.fonts", fmt.Errorf("font %s is empty", path))
	}
	return b, nil
}

// Check reports whether the fonts can be loaded.
func (f Fonts) Check() error {
	_, err := f.load()
	return err
}

package export

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xrsl/endeavor/pkg/errs"
)

// ManifestFile is written to the applicant folder after every export.
const ManifestFile = "exhibits.yaml"

// Manifest records which URL backs which exhibit for one run.
type Manifest struct {
	RunID     string          `yaml:"run_id"`
	Applicant string          `yaml:"applicant"`
	Topic     string          `yaml:"topic"`
	Document  string          `yaml:"document"`
	Generated time.Time       `yaml:"generated"`
	Exhibits  []ExhibitRecord `yaml:"exhibits"`
}

// ExhibitRecord is the archive outcome of one exhibit.
type ExhibitRecord struct {
	Label    string `yaml:"label"`
	URL      string `yaml:"url"`
	Archive  string `yaml:"archive"`
	Archived bool   `yaml:"archived"`
	Error    string `yaml:"error,omitempty"`
}

// WriteManifest writes m as YAML with 2-space indentation.
func WriteManifest(path string, m Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Filesystem("export.manifest", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errs.Filesystem("export.manifest", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, errs.Parse("export.manifest", err)
	}
	return m, nil
}

// Package export lays the run's output out on disk:
//
//	<output_dir>/<Applicant_Name>/proposed_endeavor_<name>_<timestamp>.pdf
//	<output_dir>/<Applicant_Name>/exhibit1B/source_material.pdf
//	<output_dir>/<Applicant_Name>/exhibits.yaml
package export

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xrsl/endeavor/pkg/archive"
	"github.com/xrsl/endeavor/pkg/document"
	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/utils"
)

// PageArchiver captures one URL to a file.
type PageArchiver interface {
	Archive(ctx context.Context, url, outPath string) error
}

// DocumentWriter writes the assembled document into a folder and returns
// its path.
type DocumentWriter interface {
	Write(doc *document.Document, dir string) (string, error)
}

// Result describes what an export produced.
type Result struct {
	Folder   string
	Document string
	Manifest string
	Exhibits []ExhibitRecord
}

// Failed returns the exhibits that could not be archived.
func (r Result) Failed() []ExhibitRecord {
	var out []ExhibitRecord
	for _, e := range r.Exhibits {
		if !e.Archived {
			out = append(out, e)
		}
	}
	return out
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for the manifest timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = clog.OrDiscard(l) }
}

// Controller creates the folder tree and drives the writers.
type Controller struct {
	root     string
	docs     DocumentWriter
	archiver PageArchiver
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Controller writing under root.
func New(root string, docs DocumentWriter, archiver PageArchiver, opts ...Option) *Controller {
	if root == "" {
		root = "."
	}
	c := &Controller{
		root:     root,
		docs:     docs,
		archiver: archiver,
		now:      time.Now,
		logger:   clog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplicantFolder is the folder for an applicant under root.
func (c *Controller) ApplicantFolder(applicant string) string {
	return filepath.Join(c.root, utils.SanitizeName(applicant))
}

// ExhibitPath is where an exhibit's archive is written.
func (c *Controller) ExhibitPath(applicant string, e exhibit.Exhibit) string {
	return filepath.Join(c.ApplicantFolder(applicant), e.Folder(), archive.DefaultFileName)
}

// Export writes the document, archives every exhibit and records the
// manifest. Document and folder failures are returned. An exhibit that
// fails to archive is recorded in the result and the export continues.
func (c *Controller) Export(ctx context.Context, runID string, doc *document.Document, exhibits []exhibit.Exhibit) (Result, error) {
	folder := c.ApplicantFolder(doc.Applicant)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Result{}, errs.Filesystem("export.folder", err)
	}
	res := Result{Folder: folder}

	docPath, err := c.docs.Write(doc, folder)
	if err != nil {
		return res, err
	}
	res.Document = docPath
	c.logger.Info("document exported", "path", docPath, "run_id", runID)

	for _, e := range exhibits {
		rec := ExhibitRecord{Label: e.Label, URL: e.SourceURL, Archive: c.ExhibitPath(doc.Applicant, e)}
		err := c.archiveOne(ctx, e, rec.Archive)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			rec.Error = err.Error()
			c.logger.Warn("exhibit not archived", "label", e.Label, "url", e.SourceURL, "error", err)
		} else {
			rec.Archived = true
		}
		res.Exhibits = append(res.Exhibits, rec)
	}

	res.Manifest = filepath.Join(folder, ManifestFile)
	m := Manifest{
		RunID:     runID,
		Applicant: doc.Applicant,
		Topic:     doc.Topic,
		Document:  filepath.Base(docPath),
		Generated: c.now().UTC().Truncate(time.Second),
		Exhibits:  relative(folder, res.Exhibits),
	}
	if err := WriteManifest(res.Manifest, m); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Controller) archiveOne(ctx context.Context, e exhibit.Exhibit, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Filesystem("export.exhibit", err)
	}
	if c.archiver == nil {
		return errors.New("archiving disabled")
	}
	return c.archiver.Archive(ctx, e.SourceURL, path)
}

// relative rewrites archive paths relative to the applicant folder.
func relative(folder string, recs []ExhibitRecord) []ExhibitRecord {
	out := make([]ExhibitRecord, len(recs))
	for i, r := range recs {
		if rel, err := filepath.Rel(folder, r.Archive); err == nil {
			r.Archive = filepath.ToSlash(rel)
		}
		out[i] = r
	}
	return out
}

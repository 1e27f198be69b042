package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"archreport/internal/archive"
	"archreport/internal/logging"
)

// Sink opens named outputs for writing.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
}

// Aborter is implemented by sink writers that can discard everything written
// so far instead of committing it on Close.
type Aborter interface {
	Abort() error
}

// DirSink writes outputs as files under Root. A file only replaces an
// existing one once it has been written and closed completely.
type DirSink struct {
	Root string
}

// Create opens a temporary file in Root that becomes Root/name on Close.
func (d DirSink) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.Root, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(d.Root, "."+name+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &pendingFile{File: tmp, target: d.Path(name)}, nil
}

// Path returns where name would be written.
func (d DirSink) Path(name string) string {
	return filepath.Join(d.Root, name)
}

// pendingFile is renamed onto its target on Close and removed on Abort.
type pendingFile struct {
	*os.File
	target string
}

func (p *pendingFile) Close() error {
	if err := p.File.Chmod(0644); err != nil {
		return errors.Join(err, p.Abort())
	}
	if err := p.File.Close(); err != nil {
		os.Remove(p.Name())
		return err
	}
	if err := os.Rename(p.Name(), p.target); err != nil {
		os.Remove(p.Name())
		return err
	}
	return nil
}

func (p *pendingFile) Abort() error {
	p.File.Close()
	if err := os.Remove(p.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// OutputName is the file name of a report: <slug>-<type>.<ext>.
func OutputName(slug string, t Type, ext string) string {
	slug = strings.NewReplacer("/", "_", "\\", "_").Replace(slug)
	return fmt.Sprintf("%s-%s.%s", slug, t, ext)
}

// Write serializes doc in format f to the sink. The report is rendered in
// full before the sink is opened, and a failed write is aborted, so a
// previous report under the same name survives any failure. An empty
// document writes nothing and opens nothing; the returned name is then empty.
func Write(doc *Document, f Format, sink Sink) (string, error) {
	const op = "report.Write"
	if doc.Empty() {
		logging.Render("Nothing to write for %s %s", doc.Type, f.Name())
		return "", nil
	}

	name := OutputName(doc.Resource.Slug, doc.Type, f.Extension())
	var buf bytes.Buffer
	if err := f.write(doc, &buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	out, err := sink.Create(name)
	if err != nil {
		return "", archive.Wrap(archive.KindIO, op, err, "open %s", name)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		abort(out)
		return "", archive.Wrap(archive.KindIO, op, err, "write %s", name)
	}
	if err := out.Close(); err != nil {
		return "", archive.Wrap(archive.KindIO, op, err, "close %s", name)
	}

	logging.Render("Wrote %s (%d bytes, %d rows in %d groups)", name, buf.Len(), doc.Section.RowCount(), doc.Section.Len())
	return name, nil
}

// abort discards a failed output, falling back to Close for writers that
// cannot discard.
func abort(out io.WriteCloser) {
	if a, ok := out.(Aborter); ok {
		if err := a.Abort(); err != nil {
			logging.Get(logging.CategoryRender).Warn("failed to discard partial output: %v", err)
		}
		return
	}
	out.Close()
}

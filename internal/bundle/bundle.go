// Package bundle reads and writes layout bundles: a document plus its side
// tables, as handed over by a translation layer, in msgpack form.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"reflow/internal/doc"
	"reflow/internal/format"
)

// SchemaVersion is bumped whenever the encoded layout changes.
const SchemaVersion uint16 = 1

// Ext is the file extension of layout bundles.
const Ext = ".rfb"

var (
	// ErrSchema indicates a bundle written with an unsupported schema.
	ErrSchema = errors.New("unsupported bundle schema")
	// ErrNoDocument indicates a bundle without a document.
	ErrNoDocument = errors.New("bundle has no document")
)

// Bundle is one formatting job.
type Bundle struct {
	Schema uint16 `msgpack:"schema"`
	// Path is the source file the formatted text belongs to, relative to
	// the bundle's directory unless absolute.
	Path string `msgpack:"path"`
	// Width overrides the configured line width when non-zero.
	Width  uint16        `msgpack:"width,omitempty"`
	Doc    *doc.Doc      `msgpack:"doc"`
	Tables format.Tables `msgpack:"tables"`
}

// New returns a bundle of the current schema.
func New(path string, d *doc.Doc, tables format.Tables) *Bundle {
	return &Bundle{Schema: SchemaVersion, Path: path, Doc: d, Tables: tables}
}

// SetWidth records a per-bundle width, rejecting values the wire format
// cannot hold.
func (b *Bundle) SetWidth(width int) error {
	w, err := safecast.Conv[uint16](width)
	if err != nil {
		return fmt.Errorf("bundle width %d: %w", width, err)
	}
	b.Width = w
	return nil
}

// Target resolves Path against the directory of the bundle file.
func (b *Bundle) Target(bundlePath string) string {
	if b.Path == "" || filepath.IsAbs(b.Path) {
		return b.Path
	}
	return filepath.Join(filepath.Dir(bundlePath), filepath.FromSlash(b.Path))
}

// Encode writes b to w.
func Encode(w io.Writer, b *Bundle) error {
	if b.Doc == nil {
		return ErrNoDocument
	}
	if b.Schema == 0 {
		b.Schema = SchemaVersion
	}
	return msgpack.NewEncoder(w).Encode(b)
}

// Decode reads one bundle from r and validates its schema and document.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, b.Schema, SchemaVersion)
	}
	if b.Doc == nil {
		return nil, ErrNoDocument
	}
	if err := doc.Validate(b.Doc); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReadFile decodes the bundle stored at path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// WriteFile encodes b to path through a temporary file and an atomic
// rename.
func WriteFile(path string, b *Bundle) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".rfb-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if err = Encode(f, b); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

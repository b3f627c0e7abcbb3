package gldf

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// Container is a loaded lighting-product archive: the decoded primary
// document plus lazy, by-identifier access to the resource entries it
// references.
//
// FileBytes never mutates archive state and is safe to call concurrently.
// The Root tree is single-writer: callers that edit it must hold exclusive
// access for the duration of the mutation.
type Container struct {
	Root *Root

	entries map[string]*zip.File
	limits  Limits
}

// Open loads a container from in-memory archive bytes. The primary document
// is decoded eagerly; resource entries are only read when FileBytes asks
// for them. There is no internal parallelism and no cancellation: Open
// either completes or returns an error.
func Open(data []byte, opts ...ReadOption) (*Container, error) {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	registerDecompressors(zr)
	if len(zr.File) > cfg.limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d archive entries", ErrLimitExceeded, len(zr.File))
	}
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[normalizeEntryName(f.Name)] = f
	}
	pf, ok := entries[ProductEntryName]
	if !ok {
		return nil, ErrProductMissing
	}
	if pf.UncompressedSize64 > cfg.limits.MaxProductDocumentSize {
		return nil, fmt.Errorf("%w: product document is %d bytes", ErrLimitExceeded, pf.UncompressedSize64)
	}
	raw, err := readEntry(pf)
	if err != nil {
		return nil, err
	}
	root, err := DecodeXML(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ProductEntryName, err)
	}
	return &Container{Root: root, entries: entries, limits: cfg.limits}, nil
}

// OpenFile reads pathname into memory and loads it with Open.
func OpenFile(pathname string, opts ...ReadOption) (*Container, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, err
	}
	return Open(data, opts...)
}

// FileByID returns the File entry declared under id.
func (c *Container) FileByID(id string) (*File, bool) {
	files := c.Root.GeneralDefinitions.Files
	for i := range files {
		if files[i].ID == id {
			return &files[i], true
		}
	}
	return nil, false
}

// FileBytes resolves id to its File entry and reads the matching archive
// entry. URL-type entries are flagged with ErrExternalFile and never
// fetched. Paths are validated as relative and non-escaping before any
// lookup happens.
func (c *Container) FileBytes(id string) ([]byte, error) {
	f, ok := c.FileByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFileID, id)
	}
	if f.Type == FileTypeURL {
		return nil, fmt.Errorf("%w: %q -> %s", ErrExternalFile, id, f.Name)
	}
	if err := validateEntryPath(f.Name); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, f.Name, err)
	}
	entry, ok := c.entries[normalizeEntryName(f.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, f.Name)
	}
	if entry.UncompressedSize64 > c.limits.MaxEntryUncompressed {
		return nil, fmt.Errorf("%w: entry %q is %d bytes", ErrLimitExceeded, f.Name, entry.UncompressedSize64)
	}
	return readEntry(entry)
}

// EntryNames returns the set of normalized archive entry names, in the form
// Validate consumes.
func (c *Container) EntryNames() map[string]struct{} {
	names := make(map[string]struct{}, len(c.entries))
	for n := range c.entries {
		names[n] = struct{}{}
	}
	return names
}

// Validate runs the integrity checks against the loaded archive.
func (c *Container) Validate() []IntegrityError {
	return Validate(c.Root, c.EntryNames())
}

// Write encodes root with the markup codec and writes a new container
// holding it plus the given resources (archive-relative path -> bytes).
// Entries are written in sorted path order so output is deterministic.
//
// By default Write compresses entries with deflate and fails on the first
// integrity error; use WithCompression and WithWriteValidation to change
// that.
func Write(w io.Writer, root *Root, resources map[string][]byte, opts ...WriteOption) error {
	cfg := writeConfig{limits: defaultLimits(), compression: CompDeflate, validate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if root == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if len(resources)+1 > cfg.limits.MaxEntries {
		return fmt.Errorf("%w: %d archive entries", ErrLimitExceeded, len(resources)+1)
	}
	if cfg.validate {
		names := make(map[string]struct{}, len(resources)+1)
		names[ProductEntryName] = struct{}{}
		for n := range resources {
			names[normalizeEntryName(n)] = struct{}{}
		}
		if errs := Validate(root, names); len(errs) > 0 {
			return fmt.Errorf("%w: %v", ErrValidation, errs[0])
		}
	}
	doc, err := EncodeXML(root)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	registerCompressors(zw)
	if err := writeZipEntry(zw, ProductEntryName, doc, cfg.compression); err != nil {
		_ = zw.Close()
		return err
	}
	paths := make([]string, 0, len(resources))
	for p := range resources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := validateEntryPath(p); err != nil {
			_ = zw.Close()
			return fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
		}
		if err := writeZipEntry(zw, normalizeEntryName(p), resources[p], cfg.compression); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, name string, data []byte, comp Compression) error {
	method, err := comp.zipMethod()
	if err != nil {
		return err
	}
	ew, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return err
	}
	_, err = ew.Write(data)
	return err
}

// readAll is a function variable for testing injection.
var readAll = io.ReadAll

// readEntry reads one archive entry, refusing output beyond the declared
// uncompressed size.
func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrArchive, f.Name, err)
	}
	defer rc.Close()
	expected := f.UncompressedSize64
	b, err := readAll(io.LimitReader(rc, int64(expected)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrArchive, f.Name, err)
	}
	if uint64(len(b)) > expected {
		return nil, fmt.Errorf("%w: entry %q expanded beyond declared size", ErrArchive, f.Name)
	}
	return b, nil
}

// normalizeEntryName maps archive and document paths onto one comparable
// form: forward slashes, no leading slash.
func normalizeEntryName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.TrimPrefix(name, "/")
}

// validateEntryPath rejects empty, absolute, non-normalized and escaping
// paths before any archive lookup happens.
func validateEntryPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path must not be absolute")
	}
	if strings.Contains(p, `\`) {
		return fmt.Errorf("path must use forward slashes")
	}
	clean := path.Clean(p)
	if clean != p {
		return fmt.Errorf("path must be normalized: %q", clean)
	}
	if clean == "." {
		return fmt.Errorf("path must name a file")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path must not escape the archive root")
	}
	return nil
}

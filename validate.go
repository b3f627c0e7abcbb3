package gldf

import "fmt"

// IntegrityKind classifies a non-fatal integrity finding.
type IntegrityKind uint8

const (
	DuplicateID IntegrityKind = iota + 1
	MissingEntry
	UnresolvedReference
)

func (k IntegrityKind) String() string {
	switch k {
	case DuplicateID:
		return "duplicate id"
	case MissingEntry:
		return "missing archive entry"
	case UnresolvedReference:
		return "unresolved reference"
	}
	return "unknown"
}

// IntegrityError is one finding from Validate. Findings are diagnostic: a
// document that produced findings is still exposed to callers, since it may
// be usable for inspection.
type IntegrityError struct {
	Kind    IntegrityKind
	ID      string // offending file id, or the referenced id
	Path    string // archive path, for MissingEntry
	Section string // referencing location, for UnresolvedReference
}

func (e IntegrityError) Error() string {
	switch e.Kind {
	case DuplicateID:
		return fmt.Sprintf("duplicate file id %q", e.ID)
	case MissingEntry:
		return fmt.Sprintf("file %q: no archive entry %q", e.ID, e.Path)
	case UnresolvedReference:
		return fmt.Sprintf("%s references undeclared file id %q", e.Section, e.ID)
	}
	return "unknown integrity error"
}

// Validate cross-checks root against the archive entry set, in order:
// duplicate file ids (one finding per duplicated id), local file paths
// against present entries (invalid or escaping paths count as missing),
// then every fileId cross-reference against the declared Files. It reports
// every finding instead of failing fast and never mutates root.
func Validate(root *Root, entries map[string]struct{}) []IntegrityError {
	var errs []IntegrityError
	files := root.GeneralDefinitions.Files

	counts := make(map[string]int, len(files))
	for i := range files {
		counts[files[i].ID]++
	}
	reported := make(map[string]bool)
	for i := range files {
		id := files[i].ID
		if counts[id] > 1 && !reported[id] {
			errs = append(errs, IntegrityError{Kind: DuplicateID, ID: id})
			reported[id] = true
		}
	}

	for i := range files {
		f := &files[i]
		if f.Type == FileTypeURL {
			continue
		}
		if validateEntryPath(f.Name) != nil {
			errs = append(errs, IntegrityError{Kind: MissingEntry, ID: f.ID, Path: f.Name})
			continue
		}
		if _, ok := entries[normalizeEntryName(f.Name)]; !ok {
			errs = append(errs, IntegrityError{Kind: MissingEntry, ID: f.ID, Path: f.Name})
		}
	}

	declared := make(map[string]struct{}, len(files))
	for i := range files {
		declared[files[i].ID] = struct{}{}
	}
	check := func(section, id string) {
		if id == "" {
			return
		}
		if _, ok := declared[id]; !ok {
			errs = append(errs, IntegrityError{Kind: UnresolvedReference, ID: id, Section: section})
		}
	}
	gd := &root.GeneralDefinitions
	for i := range gd.Photometries {
		p := &gd.Photometries[i]
		check(fmt.Sprintf("photometry %q", p.ID), p.FileReference.FileID)
	}
	for i := range gd.Geometries {
		g := &gd.Geometries[i]
		check(fmt.Sprintf("geometry %q", g.ID), g.FileReference.FileID)
	}
	for i := range root.ProductDefinitions.LightSources {
		ls := &root.ProductDefinitions.LightSources[i]
		if ls.SpectrumReference != nil {
			check(fmt.Sprintf("light source %q spectrum", ls.ID), ls.SpectrumReference.FileID)
		}
		if ls.ImageReference != nil {
			check(fmt.Sprintf("light source %q image", ls.ID), ls.ImageReference.FileID)
		}
	}
	return errs
}

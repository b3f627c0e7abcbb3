package gldf

const (
	// ProductEntryName is the archive entry holding the primary document.
	ProductEntryName = "product.xml"

	// RootElementName is the name of the primary document's root element.
	RootElementName = "Root"
)

// Schema identity defaults. Injected when the source document omits the
// corresponding attribute or element; referenced by field descriptors
// through the fieldDefaults table in descriptor.go.
const (
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "https://gldf.io/xsd/gldf/1.0.0-rc.3/gldf.xsd"
	FormatVersion  = "1.0.0-rc.3"
)

// FileType classifies how a File's content is resolved.
type FileType string

const (
	// FileTypeLocal marks content stored inside the container at an
	// archive-relative path.
	FileTypeLocal FileType = "localFileName"

	// FileTypeURL marks content hosted externally. The loader never
	// fetches it.
	FileTypeURL FileType = "url"
)

// Known reports whether t is one of the defined file types. Unrecognized
// values are preserved verbatim and treated as local by the loader.
func (t FileType) Known() bool {
	return t == FileTypeLocal || t == FileTypeURL
}

// Root is the decoded primary document of one lighting-product container.
// It owns every child entity; a new decode replaces the whole tree.
type Root struct {
	XSI                string             `gldf:"xmlns:xsi,attr,default=xsiNamespace"`
	SchemaLocation     string             `gldf:"xsi:noNamespaceSchemaLocation,attr,default=schemaLocation"`
	Header             Header             `gldf:"Header,elem,required"`
	GeneralDefinitions GeneralDefinitions `gldf:"GeneralDefinitions,elem,required"`
	ProductDefinitions ProductDefinitions `gldf:"ProductDefinitions,elem,required"`
}

// Header carries product metadata. Nothing references it.
type Header struct {
	Manufacturer           string `gldf:"Manufacturer,elem"`
	CreationTimeCode       string `gldf:"CreationTimeCode,elem"`
	CreatedWithApplication string `gldf:"CreatedWithApplication,elem,omitempty"`
	FormatVersion          string `gldf:"FormatVersion,elem,default=formatVersion"`
}

// GeneralDefinitions owns the referenced-resource descriptors. Other
// sections refer to Files entries by id, never by pointer.
type GeneralDefinitions struct {
	Files        []File       `gldf:"Files>File,repeated"`
	Photometries []Photometry `gldf:"Photometries>Photometry,repeated,omitempty"`
	Geometries   []Geometry   `gldf:"Geometries>Geometry,repeated,omitempty"`
}

// File describes one referenced resource: either an entry stored in the
// container at an archive-relative path, or an external URL.
type File struct {
	ID          string   `gldf:"id,attr"`
	ContentType string   `gldf:"contentType,attr"`
	Type        FileType `gldf:"type,attr"`
	Language    string   `gldf:"language,attr,omitempty"`

	// Name is the archive-relative path for local files, or the URL for
	// external ones.
	Name string `gldf:",text"`
}

// FileReference points at a File entry by id.
type FileReference struct {
	FileID string `gldf:"fileId,attr"`
}

// Photometry binds a photometric curve file to an id other sections can use.
type Photometry struct {
	ID            string        `gldf:"id,attr"`
	FileReference FileReference `gldf:"PhotometryFileReference,elem"`
}

// Geometry binds a 3D geometry file to an id other sections can use.
type Geometry struct {
	ID            string        `gldf:"id,attr"`
	FileReference FileReference `gldf:"GeometryFileReference,elem"`
}

// ProductDefinitions owns the product variants and light sources.
type ProductDefinitions struct {
	Variants     []Variant     `gldf:"Variants>Variant,repeated"`
	LightSources []LightSource `gldf:"LightSources>LightSource,repeated,omitempty"`
}

// Variant is one sellable configuration of the product.
type Variant struct {
	ID            string        `gldf:"id,attr"`
	SortOrder     int           `gldf:"sortOrder,attr,omitempty"`
	Name          LocalizedText `gldf:"Name,elem"`
	Description   LocalizedText `gldf:"Description,elem,omitempty"`
	ProductNumber LocalizedText `gldf:"ProductNumber,elem,omitempty"`
}

// LightSource describes an emitter and its file cross-references.
type LightSource struct {
	ID                string         `gldf:"id,attr"`
	Name              LocalizedText  `gldf:"Name,elem,omitempty"`
	SpectrumReference *FileReference `gldf:"SpectrumFileReference,elem,omitempty"`
	ImageReference    *FileReference `gldf:"ImageFileReference,elem,omitempty"`
}

// LocalizedText is an ordered list of language-tagged values for one logical
// field. Order is meaningful: the first entry is the display fallback.
// Duplicate language codes are permitted and preserved.
type LocalizedText struct {
	Locales []Locale `gldf:"Locale,repeated"`
}

// Locale is a single language-tagged text value.
type Locale struct {
	Language string `gldf:"language,attr"`
	Value    string `gldf:",text"`
}

// Get returns the value for lang, or the first entry's value when lang is
// absent, or "" when the text is empty.
func (t LocalizedText) Get(lang string) string {
	for _, l := range t.Locales {
		if l.Language == lang {
			return l.Value
		}
	}
	if len(t.Locales) > 0 {
		return t.Locales[0].Value
	}
	return ""
}

// Empty reports whether the text holds no entries.
func (t LocalizedText) Empty() bool {
	return len(t.Locales) == 0
}

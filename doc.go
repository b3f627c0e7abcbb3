// Package gldf reads and writes GLDF lighting-product containers.
//
// A GLDF container is a ZIP archive bundling one primary XML document
// (product.xml) with the resource files it references: photometric curves,
// 3D geometry, images and textual documents. The document declares every
// resource as a File entry with a unique id; all other sections refer to
// resources by that id, never by path.
//
// # Container Layout
//
// An archive consists of:
//   - product.xml at the archive root (required)
//   - resource entries at archive-relative paths matching the local File
//     entries of the document
//
// # Basic Usage
//
// To load a container and read a referenced resource:
//
//	c, err := gldf.OpenFile("luminaire.gldf")
//	if err != nil {
//		// ...
//	}
//	fmt.Println(c.Root.Header.Manufacturer)
//	curve, err := c.FileBytes("photometry_1")
//
// To write one:
//
//	err := gldf.Write(f, root, map[string][]byte{
//		"ldc/curve.ldt": curve,
//	})
//
// # Codecs
//
// The document tree serializes through two equivalent wire encodings. The
// markup codec (DecodeXML, EncodeXML) handles the primary XML form. The
// structured-data codec (EncodeTree, DecodeTree) exposes the same tree as
// generic key-value data (attributes prefixed with "@", text content under
// "$text") with JSON, YAML and MessagePack front ends for non-markup
// consumers. Both codecs are driven by one shared set of field mapping
// descriptors, so the encodings cannot drift apart.
//
// # Integrity
//
// Validate cross-checks a document against the archive: file id uniqueness,
// local paths against present entries, and id cross-references against the
// declared Files. Findings are diagnostic; a document with findings is
// still returned to the caller.
//
// # Security Considerations
//
// Resource paths are validated as relative and non-escaping before any
// archive lookup. Reads are capped by configurable [Limits] and refuse
// entries that expand beyond their declared size.
package gldf

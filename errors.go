package gldf

import "errors"

var (
	ErrArchive        = errors.New("gldf: invalid archive")
	ErrProductMissing = errors.New("gldf: product document missing")
	ErrMalformed      = errors.New("gldf: malformed document")
	ErrMissingElement = errors.New("gldf: missing required element")
	ErrFieldValue     = errors.New("gldf: invalid field value")
	ErrUnknownFileID  = errors.New("gldf: unknown file id")
	ErrExternalFile   = errors.New("gldf: file is an external reference")
	ErrEntryNotFound  = errors.New("gldf: archive entry not found")
	ErrInvalidPath    = errors.New("gldf: invalid entry path")
	ErrLimitExceeded  = errors.New("gldf: limit exceeded")
	ErrCompression    = errors.New("gldf: unsupported compression method")
	ErrValidation     = errors.New("gldf: validation failed")
)

package gldf

// Limits caps archive reading to guard against resource exhaustion.
// Zero-valued fields fall back to the defaults.
type Limits struct {
	MaxEntries             int    // archive entry count
	MaxProductDocumentSize uint64 // uncompressed primary document bytes
	MaxEntryUncompressed   uint64 // uncompressed bytes per resource entry
}

func defaultLimits() Limits {
	return Limits{
		MaxEntries:             10_000,
		MaxProductDocumentSize: 64 << 20,  // 64 MiB
		MaxEntryUncompressed:   512 << 20, // 512 MiB
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxProductDocumentSize == 0 {
		l.MaxProductDocumentSize = d.MaxProductDocumentSize
	}
	if l.MaxEntryUncompressed == 0 {
		l.MaxEntryUncompressed = d.MaxEntryUncompressed
	}
	return l
}

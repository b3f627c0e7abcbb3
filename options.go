package gldf

type readConfig struct {
	limits Limits
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

type writeConfig struct {
	limits      Limits
	compression Compression
	validate    bool
}

type WriteOption func(*writeConfig)

func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithCompression selects the ZIP method used for every written entry.
func WithCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.compression = comp }
}

// WithWriteValidation controls the pre-write integrity check. When enabled,
// Write fails on the first integrity finding.
func WithWriteValidation(v bool) WriteOption {
	return func(c *writeConfig) { c.validate = v }
}

package atlas

// Config holds packer and atlas configuration.
type Config struct {
	// Width is the atlas texture width in pixels.
	// Default: 256
	Width int

	// Height is the atlas texture height in pixels.
	// Default: 256
	Height int

	// ShelfAlignment rounds shelf heights up to a multiple of this value so
	// glyphs of similar height share shelves.
	// Default: 8
	ShelfAlignment int

	// BucketWidth is the minimum width of a bucket within a shelf.
	// Wider items get buckets rounded up to a multiple of it.
	// Default: 32
	BucketWidth int
}

// DefaultConfig returns the default configuration: a 256x256 atlas.
func DefaultConfig() Config {
	return Config{
		Width:          256,
		Height:         256,
		ShelfAlignment: 8,
		BucketWidth:    32,
	}
}

// MaxSize is the largest supported atlas dimension.
const MaxSize = 16384

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Width < 1 {
		return &ConfigError{Field: "Width", Reason: "must be positive"}
	}
	if c.Width > MaxSize {
		return &ConfigError{Field: "Width", Reason: "must be at most 16384"}
	}
	if c.Height < 1 {
		return &ConfigError{Field: "Height", Reason: "must be positive"}
	}
	if c.Height > MaxSize {
		return &ConfigError{Field: "Height", Reason: "must be at most 16384"}
	}
	if c.ShelfAlignment < 1 {
		return &ConfigError{Field: "ShelfAlignment", Reason: "must be positive"}
	}
	if c.BucketWidth < 1 {
		return &ConfigError{Field: "BucketWidth", Reason: "must be positive"}
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Width == 0 {
		c.Width = def.Width
	}
	if c.Height == 0 {
		c.Height = def.Height
	}
	if c.ShelfAlignment == 0 {
		c.ShelfAlignment = def.ShelfAlignment
	}
	if c.BucketWidth == 0 {
		c.BucketWidth = def.BucketWidth
	}
	return c
}

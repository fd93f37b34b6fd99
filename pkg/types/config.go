package types

import "time"

// DefaultDebounce is the quiet period before a search term is written to the URL.
const DefaultDebounce = 200 * time.Millisecond

// ContentConfig holds settings for loading concept files.
type ContentConfig struct {
	// Dir is the directory containing concept markdown files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Schema selects permissive or strict frontmatter validation (default permissive).
	Schema SchemaMode `json:"schema" yaml:"schema" mapstructure:"schema"`

	// Workers bounds the number of files parsed concurrently (default 8).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// IndexConfig holds settings for the full-text index.
type IndexConfig struct {
	// Dir is the directory holding concepts.db and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// FilterConfig holds settings for the search/filter state synchronizer.
type FilterConfig struct {
	// Debounce is the delay before a search term change reaches the URL (default 200ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// SiteConfig holds settings describing the published site.
type SiteConfig struct {
	// URL is the canonical site origin (e.g. "https://example.github.io").
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// BasePath is the path prefix the site is served under (e.g. "/dl").
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`
}

// ServeConfig holds settings for the HTTP server.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Watch reloads content when files under the content directory change.
	Watch bool `json:"watch" yaml:"watch" mapstructure:"watch"`

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ThemeConfig points at an optional theme token override file.
type ThemeConfig struct {
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// LogConfig selects the logger mode: "dev" or "prod".
type LogConfig struct {
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// Config groups all stage configurations.
type Config struct {
	Site    SiteConfig    `json:"site" yaml:"site" mapstructure:"site"`
	Content ContentConfig `json:"content" yaml:"content" mapstructure:"content"`
	Index   IndexConfig   `json:"index" yaml:"index" mapstructure:"index"`
	Filter  FilterConfig  `json:"filter" yaml:"filter" mapstructure:"filter"`
	Serve   ServeConfig   `json:"serve" yaml:"serve" mapstructure:"serve"`
	Theme   ThemeConfig   `json:"theme" yaml:"theme" mapstructure:"theme"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Content.Dir == "" {
		c.Content.Dir = "content/concepts"
	}
	if c.Content.Schema == "" {
		c.Content.Schema = SchemaPermissive
	}
	if c.Content.Workers <= 0 {
		c.Content.Workers = 8
	}
	if c.Index.Dir == "" {
		c.Index.Dir = "index"
	}
	if c.Index.MaxResults <= 0 {
		c.Index.MaxResults = 20
	}
	if c.Filter.Debounce <= 0 {
		c.Filter.Debounce = DefaultDebounce
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Serve.ShutdownTimeout <= 0 {
		c.Serve.ShutdownTimeout = 5 * time.Second
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	return c
}

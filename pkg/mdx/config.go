package mdx

import "fmt"

// ExpressionHandling controls how {expression} nodes render in Layer 1.
type ExpressionHandling int

const (
	ExpressionStrip ExpressionHandling = iota
	ExpressionPreserveRaw
	ExpressionPlaceholder
)

// TableFormat selects how Layer 2 treats pipe tables.
type TableFormat int

const (
	TablePassthrough TableFormat = iota
	TableList
)

// Options toggles the simple, document-wide behaviors of Layer 1.
type Options struct {
	StripImports        bool
	StripExports        bool
	PreserveFrontmatter bool
	ExpressionHandling  ExpressionHandling
}

// DefaultOptions matches the configuration schema's documented defaults.
func DefaultOptions() Options {
	return Options{
		StripImports:        true,
		StripExports:        true,
		PreserveFrontmatter: true,
		ExpressionHandling:  ExpressionStrip,
	}
}

// ComponentRule is either a template string (Template non-empty, Callback
// nil) or a host-supplied callback (Callback non-nil). Exactly one should
// be set; Transform treats a nil Callback as "use Template".
type ComponentRule struct {
	Template string
	Callback func(attrs map[string]string, children string) (string, error)
}

// Components holds the per-tag and fallback rendering rules resolved
// during Layer 1.
type Components struct {
	Named   map[string]ComponentRule
	Default *ComponentRule
}

// LinkRewrite configures Layer 2's handling of Markdown links.
type LinkRewrite struct {
	Strip          bool
	AllowedDomains []string
	MakeAbsolute   bool
	BaseURL        string
}

// ImageRewrite configures Layer 2's handling of Markdown images.
type ImageRewrite struct {
	Strip        bool
	MakeAbsolute bool
	BaseURL      string
}

// MarkdownConfig is the Layer 2 policy block.
type MarkdownConfig struct {
	Tables            TableFormat
	Links             LinkRewrite
	Images            ImageRewrite
	StripHTMLComments bool
	// StripDoctype removes <!DOCTYPE ...> HTML blocks, wherever they stand
	// at block level, left over from component markup that embeds raw
	// HTML fragments. Not part of
	// the documented schema; defaults to true like the reference
	// implementation it was carried over from.
	StripDoctype bool
}

// Config is the full, immutable configuration consumed by Transform and
// Rewrite. It is never mutated once built; concurrent Convert calls may
// share one safely.
type Config struct {
	Options    Options
	Components Components
	Markdown   MarkdownConfig
}

// DefaultConfig returns a configuration with every documented default:
// imports/exports stripped, frontmatter preserved, expressions stripped,
// tables passed through, and no link/image/comment rewriting.
func DefaultConfig() *Config {
	return &Config{
		Options:  DefaultOptions(),
		Markdown: MarkdownConfig{Tables: TablePassthrough, StripDoctype: true},
	}
}

// Validate reports configuration errors that must be caught before the
// pure pipeline runs: an empty base_url paired with make_absolute=true is
// nonsensical and rejected at decode time, matching §6.2.
func (c *Config) Validate() error {
	if c.Markdown.Links.MakeAbsolute && c.Markdown.Links.BaseURL == "" {
		return fmt.Errorf("mdx: config error: markdown.links.make_absolute requires a non-empty base_url")
	}
	if c.Markdown.Images.MakeAbsolute && c.Markdown.Images.BaseURL == "" {
		return fmt.Errorf("mdx: config error: markdown.images.make_absolute requires a non-empty base_url")
	}
	return nil
}

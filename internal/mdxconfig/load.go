// Package mdxconfig loads mdx.Config from a YAML configuration file. This
// is ambient, external-collaborator territory: the core pkg/mdx package
// never parses a file format itself, only the decoded structure.
package mdxconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/mdx2md/pkg/mdx"
)

type yamlOptions struct {
	StripImports        *bool  `yaml:"strip_imports"`
	StripExports        *bool  `yaml:"strip_exports"`
	PreserveFrontmatter *bool  `yaml:"preserve_frontmatter"`
	ExpressionHandling  string `yaml:"expression_handling"`
}

type yamlComponents struct {
	Named   map[string]string `yaml:"named"`
	Default string            `yaml:"_default"`
}

type yamlLinkRewrite struct {
	Strip          bool     `yaml:"strip"`
	AllowedDomains []string `yaml:"allowed_domains"`
	MakeAbsolute   bool     `yaml:"make_absolute"`
	BaseURL        string   `yaml:"base_url"`
}

type yamlImageRewrite struct {
	Strip        bool   `yaml:"strip"`
	MakeAbsolute bool   `yaml:"make_absolute"`
	BaseURL      string `yaml:"base_url"`
}

type yamlMarkdown struct {
	Tables            string           `yaml:"tables"`
	Links             yamlLinkRewrite  `yaml:"links"`
	Images            yamlImageRewrite `yaml:"images"`
	StripHTMLComments bool             `yaml:"strip_html_comments"`
	StripDoctype      *bool            `yaml:"strip_doctype"`
}

type yamlConfig struct {
	Options    yamlOptions    `yaml:"options"`
	Components yamlComponents `yaml:"components"`
	Markdown   yamlMarkdown   `yaml:"markdown"`
}

// Load reads and decodes a YAML configuration file into an *mdx.Config,
// rejecting unknown top-level keys and unrecognized enum values, and
// running mdx.Config.Validate before returning.
func Load(path string) (*mdx.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mdxconfig: read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)

	var raw yamlConfig
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("mdxconfig: parse %s: %w", path, err)
	}

	cfg := mdx.DefaultConfig()

	if raw.Options.StripImports != nil {
		cfg.Options.StripImports = *raw.Options.StripImports
	}
	if raw.Options.StripExports != nil {
		cfg.Options.StripExports = *raw.Options.StripExports
	}
	if raw.Options.PreserveFrontmatter != nil {
		cfg.Options.PreserveFrontmatter = *raw.Options.PreserveFrontmatter
	}
	if raw.Options.ExpressionHandling != "" {
		handling, err := parseExpressionHandling(raw.Options.ExpressionHandling)
		if err != nil {
			return nil, fmt.Errorf("mdxconfig: %s: %w", path, err)
		}
		cfg.Options.ExpressionHandling = handling
	}

	if len(raw.Components.Named) > 0 {
		cfg.Components.Named = make(map[string]mdx.ComponentRule, len(raw.Components.Named))
		for tag, tmpl := range raw.Components.Named {
			cfg.Components.Named[tag] = mdx.ComponentRule{Template: tmpl}
		}
	}
	if raw.Components.Default != "" {
		rule := mdx.ComponentRule{Template: raw.Components.Default}
		cfg.Components.Default = &rule
	}

	if raw.Markdown.Tables != "" {
		format, err := parseTableFormat(raw.Markdown.Tables)
		if err != nil {
			return nil, fmt.Errorf("mdxconfig: %s: %w", path, err)
		}
		cfg.Markdown.Tables = format
	}
	cfg.Markdown.Links = mdx.LinkRewrite{
		Strip:          raw.Markdown.Links.Strip,
		AllowedDomains: raw.Markdown.Links.AllowedDomains,
		MakeAbsolute:   raw.Markdown.Links.MakeAbsolute,
		BaseURL:        raw.Markdown.Links.BaseURL,
	}
	cfg.Markdown.Images = mdx.ImageRewrite{
		Strip:        raw.Markdown.Images.Strip,
		MakeAbsolute: raw.Markdown.Images.MakeAbsolute,
		BaseURL:      raw.Markdown.Images.BaseURL,
	}
	cfg.Markdown.StripHTMLComments = raw.Markdown.StripHTMLComments
	if raw.Markdown.StripDoctype != nil {
		cfg.Markdown.StripDoctype = *raw.Markdown.StripDoctype
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mdxconfig: %s: %w", path, err)
	}

	slog.Debug("mdxconfig: loaded configuration", "path", path,
		"strip_imports", cfg.Options.StripImports, "tables", raw.Markdown.Tables)

	return cfg, nil
}

func parseExpressionHandling(s string) (mdx.ExpressionHandling, error) {
	switch s {
	case "strip":
		return mdx.ExpressionStrip, nil
	case "preserve_raw":
		return mdx.ExpressionPreserveRaw, nil
	case "placeholder":
		return mdx.ExpressionPlaceholder, nil
	default:
		return 0, fmt.Errorf("unrecognized options.expression_handling %q", s)
	}
}

func parseTableFormat(s string) (mdx.TableFormat, error) {
	switch s {
	case "passthrough":
		return mdx.TablePassthrough, nil
	case "list":
		return mdx.TableList, nil
	default:
		return 0, fmt.Errorf("unrecognized markdown.tables %q", s)
	}
}

package mdx

import "strings"

// Transform renders a parsed tree into an intermediate Markdown string
// (Layer 1): JSX elements are resolved via resolver first, then via
// config's named/default component rules, falling back to the
// html-to-markdown rendering for bare HTML tag names and to their rendered
// children for any other tag when no rule applies. Import/export/frontmatter/expression
// handling follows Options. Transform is infallible for a well-formed
// tree, except that a ComponentResolver or callback ComponentRule may
// itself fail, in which case the first such error aborts the walk.
func Transform(tree *Root, config *Config, resolver ComponentResolver) (string, error) {
	if resolver == nil {
		resolver = NoResolver{}
	}
	var out strings.Builder
	for _, n := range tree.Children {
		if err := transformNode(n, config, resolver, &out); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func transformNode(n *Node, config *Config, resolver ComponentResolver, out *strings.Builder) error {
	switch n.Kind {
	case NodeFrontmatter:
		if config.Options.PreserveFrontmatter {
			out.WriteString("---\n")
			out.WriteString(n.Text)
			out.WriteString("\n---\n")
		}
	case NodeImport:
		if !config.Options.StripImports {
			out.WriteString(n.Text)
			out.WriteByte('\n')
		}
	case NodeExport:
		if !config.Options.StripExports {
			out.WriteString(n.Text)
			out.WriteByte('\n')
		}
	case NodeMarkdown:
		out.WriteString(n.Text)
	case NodeExpression:
		switch config.Options.ExpressionHandling {
		case ExpressionStrip:
		case ExpressionPreserveRaw:
			out.WriteByte('{')
			out.WriteString(n.Text)
			out.WriteByte('}')
		case ExpressionPlaceholder:
			out.WriteString("[expression]")
		}
	case NodeJsxElement:
		return transformElement(n, config, resolver, out)
	}
	return nil
}

func transformElement(n *Node, config *Config, resolver ComponentResolver, out *strings.Builder) error {
	childrenStr, err := transformChildren(n.Children, config, resolver)
	if err != nil {
		return err
	}

	// JSX fragments bypass templating entirely.
	if n.Tag == "" {
		out.WriteString(childrenStr)
		return nil
	}

	props := attributeMap(n.Attributes)

	if rendered, ok, err := resolver.Resolve(n.Tag, props, childrenStr); err != nil {
		return &CallbackError{Tag: n.Tag, Offset: n.Span.Start, Err: err}
	} else if ok {
		out.WriteString(rendered)
		return nil
	}

	rule, ok := config.Components.Named[n.Tag]
	if !ok && config.Components.Default != nil {
		rule, ok = *config.Components.Default, true
	}
	if ok {
		if rule.Callback != nil {
			rendered, err := rule.Callback(props, childrenStr)
			if err != nil {
				return &CallbackError{Tag: n.Tag, Offset: n.Span.Start, Err: err}
			}
			out.WriteString(rendered)
			return nil
		}
		out.WriteString(applyTemplate(rule.Template, n.Attributes, childrenStr))
		return nil
	}

	if rendered, ok := htmlFallbackRender(n.Tag, n.Attributes, childrenStr, n.SelfClosing); ok {
		out.WriteString(rendered)
		return nil
	}

	out.WriteString(childrenStr)
	return nil
}

func attributeMap(attrs []Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = attrValueString(a)
	}
	return m
}

func attrValueString(a Attribute) string {
	switch a.Kind {
	case AttrString:
		return a.Value
	case AttrExpression:
		return a.Value
	default:
		return "true"
	}
}

// transformChildren renders each child independently, then joins them,
// trimming trailing line-spaces from all but the last part so that MDX
// source indentation does not leak into the rendered Markdown. Spaces that
// end a part mid-line (text followed by an inline sibling) are kept.
func transformChildren(children []*Node, config *Config, resolver ComponentResolver) (string, error) {
	parts := make([]string, len(children))
	for i, c := range children {
		var buf strings.Builder
		if err := transformNode(c, config, resolver, &buf); err != nil {
			return "", err
		}
		parts[i] = buf.String()
	}

	var out strings.Builder
	for i, part := range parts {
		if i < len(parts)-1 {
			out.WriteString(trimTrailingLineSpaces(part))
		} else {
			out.WriteString(part)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func trimTrailingLineSpaces(s string) string {
	lines := strings.Split(s, "\n")
	last := len(lines) - 1
	for i, l := range lines {
		// The final line runs on into the next sibling, so its trailing
		// spaces are inline text unless the line is indentation only.
		if i == last && strings.TrimSpace(l) != "" {
			continue
		}
		lines[i] = strings.TrimRight(l, " \t")
	}
	joined := strings.Join(lines, "\n")
	return joined
}

// applyTemplate substitutes {attrName} placeholders and {children} into a
// template string. {children} expansion is block-prefix aware: when the
// template line containing {children} opens with a repeatable prefix
// (e.g. "> " for a blockquote), that prefix is re-applied to every
// continuation line of a multi-line children value.
func applyTemplate(template string, attributes []Attribute, children string) string {
	result := strings.ReplaceAll(template, `\n`, "\n")

	for _, a := range attributes {
		placeholder := "{" + a.Name + "}"
		result = strings.ReplaceAll(result, placeholder, attrValueString(a))
	}

	idx := strings.Index(result, "{children}")
	if idx == -1 {
		return result
	}
	before := result[:idx]
	after := result[idx+len("{children}"):]

	lineStart := strings.LastIndexByte(before, '\n') + 1
	lineContent := before[lineStart:]
	prefix := extractBlockPrefix(lineContent)

	if prefix != "" && strings.Contains(children, "\n") {
		lines := strings.Split(children, "\n")
		trailingNewline := strings.HasSuffix(children, "\n")
		if trailingNewline {
			lines = lines[:len(lines)-1]
		}
		var expanded strings.Builder
		for i, line := range lines {
			if i == 0 {
				expanded.WriteString(line)
				continue
			}
			expanded.WriteByte('\n')
			if line == "" {
				expanded.WriteString(strings.TrimRight(prefix, " \t"))
			} else {
				expanded.WriteString(prefix)
				expanded.WriteString(line)
			}
		}
		if trailingNewline {
			expanded.WriteByte('\n')
		}
		return before + expanded.String() + after
	}

	return before + children + after
}

// extractBlockPrefix captures a line's leading run of '>', space, and tab
// characters: the part of a blockquote/list marker that must be repeated
// on every continuation line of expanded children.
func extractBlockPrefix(line string) string {
	i := 0
	for i < len(line) {
		c := line[i]
		if c != '>' && c != ' ' && c != '\t' {
			break
		}
		i++
	}
	return line[:i]
}

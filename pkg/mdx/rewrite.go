package mdx

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownScanner = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// Rewrite applies Layer 2: it re-scans the Markdown produced by Transform
// with goldmark as a CommonMark offset-yielding scanner, locating tables,
// HTML comments, and (via a hand-rolled bracket/paren scanner, mirroring
// the reference implementation) links and images, then performs
// surgical in-place replacements from the end of the string toward the
// beginning so earlier offsets stay valid.
func Rewrite(markdown string, cfg *MarkdownConfig) string {
	result := rewriteLinksAndImages(markdown, cfg)
	result = rewriteTables(result, cfg)
	result = rewriteHTMLBlocks(result, cfg)
	return result
}

type replacement struct {
	start, end int
	text       string
}

func applyReplacements(source string, repls []replacement) string {
	if len(repls) == 0 {
		return source
	}
	out := source
	for i := len(repls) - 1; i >= 0; i-- {
		r := repls[i]
		out = out[:r.start] + r.text + out[r.end:]
	}
	return out
}

// ---- links & images ----

func rewriteLinksAndImages(input string, cfg *MarkdownConfig) string {
	links := cfg.Links
	images := cfg.Images
	active := links.Strip || links.MakeAbsolute || len(links.AllowedDomains) > 0 ||
		images.Strip || images.MakeAbsolute
	if !active {
		return input
	}

	src := input
	n := len(src)
	var repls []replacement

	i := 0
	for i < n {
		isImage := src[i] == '!'
		bracketStart := i
		if isImage {
			bracketStart = i + 1
		}
		if bracketStart >= n || src[bracketStart] != '[' {
			i++
			continue
		}
		closeBracket, ok := findMatchingBracket(src, bracketStart)
		if !ok {
			i++
			continue
		}
		parenStart := closeBracket + 1
		if parenStart >= n || src[parenStart] != '(' {
			i++
			continue
		}
		parenEnd, ok := findClosingParen(src, parenStart)
		if !ok {
			i++
			continue
		}

		matchStart := i
		matchEnd := parenEnd + 1
		linkText := src[bracketStart+1 : closeBracket]
		inner := src[parenStart+1 : parenEnd]
		dest, _ := parseLinkDestination(inner)

		if isImage {
			if images.Strip {
				end := matchEnd
				if end < n && src[end] == '\n' && isAloneOnLine(src, matchStart, matchEnd) {
					end++
				}
				repls = append(repls, replacement{matchStart, end, ""})
			} else if images.MakeAbsolute && needsAbsolutize(dest) {
				newDest := makeAbsoluteURL(images.BaseURL, dest)
				newInner := strings.Replace(inner, dest, newDest, 1)
				repls = append(repls, replacement{parenStart + 1, parenEnd, newInner})
			}
		} else {
			switch {
			case links.Strip:
				repls = append(repls, replacement{matchStart, matchEnd, linkText})
			case isDangerousScheme(dest) || isDisallowedDomain(dest, links.AllowedDomains):
				repls = append(repls, replacement{matchStart, matchEnd, linkText})
			case links.MakeAbsolute && needsAbsolutize(dest):
				newDest := makeAbsoluteURL(links.BaseURL, dest)
				newInner := strings.Replace(inner, dest, newDest, 1)
				repls = append(repls, replacement{parenStart + 1, parenEnd, newInner})
			}
		}

		i = parenEnd + 1
	}

	return applyReplacements(src, repls)
}

// isAloneOnLine reports whether [start,end) is the only non-whitespace
// content on its source line, so stripping it can also absorb the line's
// trailing newline instead of leaving a blank line behind.
func isAloneOnLine(src string, start, end int) bool {
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	if strings.TrimSpace(src[lineStart:start]) != "" {
		return false
	}
	rest := src[end:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest) == ""
}

// extendOverAdjacentBlankLine grows [start,end) by one immediately-adjacent
// blank line, preferring the line after the range and falling back to the
// line before it, so stripping an HTML comment that stood alone between
// two blank lines leaves only one behind rather than two.
func extendOverAdjacentBlankLine(src string, start, end int) (int, int) {
	if end < len(src) && src[end] == '\n' {
		return start, end + 1
	}
	if start >= 2 && src[start-1] == '\n' && src[start-2] == '\n' {
		return start - 1, end
	}
	return start, end
}

func findMatchingBracket(s string, start int) (int, bool) {
	if s[start] != '[' {
		return 0, false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func findClosingParen(s string, start int) (int, bool) {
	if s[start] != '(' {
		return 0, false
	}
	depth := 0
	inAngle := false
	inQuotes := false
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '<':
			if !inQuotes {
				inAngle = true
			}
		case '>':
			if inAngle {
				inAngle = false
			}
		case '"':
			if !inAngle {
				inQuotes = !inQuotes
			}
		case '(':
			if !inQuotes && !inAngle {
				depth++
			}
		case ')':
			if !inQuotes && !inAngle {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

func parseLinkDestination(inner string) (dest, title string) {
	trimmed := strings.TrimSpace(inner)
	lastQuote := strings.LastIndexByte(trimmed, '"')
	if lastQuote > 0 {
		before := trimmed[:lastQuote]
		if openQuote := strings.LastIndexByte(before, '"'); openQuote >= 0 {
			return strings.TrimSpace(trimmed[:openQuote]), trimmed[openQuote+1 : lastQuote]
		}
	}
	return trimmed, ""
}

func needsAbsolutize(u string) bool {
	return !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") &&
		!strings.HasPrefix(u, "//") && !strings.HasPrefix(u, "#")
}

func makeAbsoluteURL(base, u string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasPrefix(u, "/") {
		return base + u
	}
	return base + "/" + u
}

var dangerousSchemes = []string{"javascript:", "data:", "vbscript:"}

func isDangerousScheme(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	for _, s := range dangerousSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

func isDisallowedDomain(u string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	if needsAbsolutize(u) {
		// relative hrefs bypass the allowlist check entirely.
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := parsed.Hostname()
	for _, a := range allowed {
		if strings.EqualFold(host, a) {
			return false
		}
	}
	return true
}

// ---- tables ----

func rewriteTables(input string, cfg *MarkdownConfig) string {
	if cfg.Tables != TableList {
		return input
	}

	source := []byte(input)
	doc := markdownScanner.Parse(text.NewReader(source))

	var repls []replacement
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*extast.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		start, end, ok := nodeByteRange(table)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		// Widen to whole lines so the rows' outer pipes are replaced too.
		start = strings.LastIndexByte(input[:start], '\n') + 1
		if end > start && input[end-1] != '\n' {
			if nl := strings.IndexByte(input[end:], '\n'); nl != -1 {
				end += nl + 1
			} else {
				end = len(input)
			}
		}
		listText := convertTableTextToList(string(source[start:end]))
		repls = append(repls, replacement{start, end, listText})
		return ast.WalkSkipChildren, nil
	})

	return applyReplacements(input, repls)
}

func convertTableTextToList(table string) string {
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) < 2 {
		return table
	}
	headers := splitTableRow(lines[0])

	var items []string
	for _, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitTableRow(line)
		parts := make([]string, len(cells))
		for i, cell := range cells {
			header := "?"
			if i < len(headers) {
				header = headers[i]
			}
			parts[i] = "**" + header + "**: " + cell
		}
		items = append(items, "- "+strings.Join(parts, ", "))
	}
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}

// splitTableRow splits a pipe-delimited row, trimming one leading and
// trailing pipe and honoring backslash-escaped pipes within cells.
func splitTableRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == '\\' && i+1 < len(trimmed) && trimmed[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// ---- HTML comments & doctype ----

func rewriteHTMLBlocks(input string, cfg *MarkdownConfig) string {
	if !cfg.StripHTMLComments && !cfg.StripDoctype {
		return input
	}

	source := []byte(input)
	doc := markdownScanner.Parse(text.NewReader(source))

	var repls []replacement
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.HTMLBlock:
			if cfg.StripHTMLComments && node.HTMLBlockType == ast.HTMLBlockType2 {
				if start, end, ok := nodeByteRange(node); ok {
					start, end = extendOverAdjacentBlankLine(input, start, end)
					repls = append(repls, replacement{start, end, ""})
				}
			}
			if cfg.StripDoctype && node.HTMLBlockType == ast.HTMLBlockType4 {
				if start, end, ok := nodeByteRange(node); ok {
					start, end = extendOverAdjacentBlankLine(input, start, end)
					repls = append(repls, replacement{start, end, ""})
				}
			}
		case *ast.RawHTML:
			if !cfg.StripHTMLComments {
				return ast.WalkContinue, nil
			}
			if node.Segments == nil || node.Segments.Len() == 0 {
				return ast.WalkContinue, nil
			}
			first := node.Segments.At(0)
			raw := string(first.Value(source))
			if strings.HasPrefix(strings.TrimSpace(raw), "<!--") {
				last := node.Segments.At(node.Segments.Len() - 1)
				start, end := first.Start, last.Stop
				if isAloneOnLine(input, start, end) {
					start, end = extendOverAdjacentBlankLine(input, start, end)
				}
				repls = append(repls, replacement{start, end, ""})
			}
		}
		return ast.WalkContinue, nil
	})

	return applyReplacements(input, repls)
}

// linesProvider is implemented by every goldmark block node (via
// ast.BaseBlock): it exposes the source line segments the node covers.
type linesProvider interface {
	Lines() *text.Segments
}

// nodeByteRange computes the overall [start,end) byte range a node spans
// in its source, using its own Lines() when populated and otherwise
// unioning its children's ranges. This lets a single helper work for
// leaf blocks (HTMLBlock) and containers whose own Lines() may be empty
// (Table: only its TableHeader/TableRow children carry line segments).
func nodeByteRange(n ast.Node) (start, end int, ok bool) {
	if lp, isLP := n.(linesProvider); isLP {
		if lines := lp.Lines(); lines != nil && lines.Len() > 0 {
			first := lines.At(0)
			last := lines.At(lines.Len() - 1)
			return first.Start, last.Stop, true
		}
	}
	found := false
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cs, ce, cok := nodeByteRange(c)
		if !cok {
			continue
		}
		if !found {
			start, end, found = cs, ce, true
			continue
		}
		if cs < start {
			start = cs
		}
		if ce > end {
			end = ce
		}
	}
	return start, end, found
}

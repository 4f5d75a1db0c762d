package mdx

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// bareHTMLTags lists the lowercase tag names treated as literal HTML
// rather than opaque components when no named or default component rule
// claims them. This lets an MDX document embed plain HTML formatting
// (bold, headings, lists, tables, ...) and still get sensible Markdown
// out of Layer 1 without requiring the caller to configure a template for
// every standard tag.
var bareHTMLTags = map[string]bool{
	"a": true, "b": true, "blockquote": true, "br": true, "code": true,
	"div": true, "em": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "hr": true, "i": true, "img": true, "li": true,
	"ol": true, "p": true, "pre": true, "span": true, "strong": true,
	"sub": true, "sup": true, "table": true, "tbody": true, "td": true,
	"th": true, "thead": true, "tr": true, "u": true, "ul": true,
}

// htmlFallbackRender reconstructs the element as an HTML fragment and
// renders it through the html-to-markdown converter. It only fires for
// recognized bare HTML tag names; anything else (an unconfigured custom
// component) falls through to plain children passthrough, matching the
// reference transform's behavior for unmapped tags.
func htmlFallbackRender(tag string, attrs []Attribute, children string, selfClosing bool) (string, bool) {
	lower := strings.ToLower(tag)
	if !bareHTMLTags[lower] {
		return "", false
	}

	var html strings.Builder
	html.WriteByte('<')
	html.WriteString(lower)
	for _, a := range attrs {
		html.WriteByte(' ')
		html.WriteString(a.Name)
		if a.Kind != AttrAbsent {
			html.WriteString(`="`)
			html.WriteString(attrValueString(a))
			html.WriteByte('"')
		}
	}
	if selfClosing {
		html.WriteString(" />")
	} else {
		html.WriteByte('>')
		html.WriteString(children)
		html.WriteString("</")
		html.WriteString(lower)
		html.WriteByte('>')
	}

	rendered, err := htmltomarkdown.ConvertString(html.String())
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(rendered), true
}

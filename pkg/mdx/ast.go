package mdx

// NodeKind identifies the concrete type of a Node in the parsed tree.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeFrontmatter
	NodeImport
	NodeExport
	NodeJsxElement
	NodeExpression
	NodeMarkdown
)

// Node is one element of the parsed MDX tree. Payload fields are populated
// according to Kind, mirroring Token's shape one level up.
type Node struct {
	Kind NodeKind
	Span Span

	// Frontmatter, Import, Export, Expression, Markdown.
	Text string

	// JsxElement.
	Tag         string
	Attributes  []Attribute
	SelfClosing bool
	Children    []*Node
}

// Root is the top-level parse result: an ordered list of sibling nodes.
type Root struct {
	Children []*Node
}

package mdx

// Parse consumes a token stream produced by Tokenize and builds a Root
// tree. It is a recursive-descent parser driven by an explicit stack of
// open JsxElement frames rather than recursive function calls, so deeply
// nested MDX does not grow the Go call stack.
func Parse(tokens []Token) (*Root, error) {
	root := &Root{}
	stack := []*Node{nil} // nil marks the root frame
	appendChild := func(n *Node) {
		if len(stack) == 1 {
			root.Children = append(root.Children, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case KindFrontmatter:
			appendChild(&Node{Kind: NodeFrontmatter, Span: tok.Span, Text: tok.Text})
		case KindImport:
			appendChild(&Node{Kind: NodeImport, Span: tok.Span, Text: tok.Text})
		case KindExport:
			appendChild(&Node{Kind: NodeExport, Span: tok.Span, Text: tok.Text})
		case KindExpression:
			appendChild(&Node{Kind: NodeExpression, Span: tok.Span, Text: tok.Text})
		case KindMarkdown:
			appendChild(&Node{Kind: NodeMarkdown, Span: tok.Span, Text: tok.Text})
		case KindJsxOpen:
			el := &Node{
				Kind:        NodeJsxElement,
				Span:        tok.Span,
				Tag:         tok.Tag,
				Attributes:  tok.Attributes,
				SelfClosing: tok.SelfClosing,
			}
			if tok.SelfClosing {
				appendChild(el)
			} else {
				appendChild(el)
				stack = append(stack, el)
			}
		case KindJsxClose:
			if len(stack) == 1 {
				return nil, &ParseError{Offset: tok.Span.Start, Err: &MismatchedCloseTag{Expected: "", Found: tok.Tag, Offset: tok.Span.Start}}
			}
			top := stack[len(stack)-1]
			if top.Tag != tok.Tag {
				return nil, &ParseError{
					Offset: tok.Span.Start,
					Err:    &MismatchedCloseTag{Expected: top.Tag, Found: tok.Tag, Offset: tok.Span.Start},
				}
			}
			top.Span.End = tok.Span.End
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) != 1 {
		top := stack[len(stack)-1]
		return nil, &ParseError{
			Offset: top.Span.Start,
			Err:    &UnclosedElement{Tag: top.Tag, Offset: top.Span.Start},
		}
	}

	return root, nil
}

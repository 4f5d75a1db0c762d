package mdx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Frontmatter(t *testing.T) {
	input := "---\ntitle: Hello\nauthor: Test\n---\n\n# Content\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	assert.Equal(t, KindFrontmatter, tokens[0].Kind)
	assert.Equal(t, "title: Hello\nauthor: Test", tokens[0].Text)
	assert.Equal(t, KindMarkdown, tokens[1].Kind)
	assert.Contains(t, tokens[1].Text, "# Content")
}

func TestTokenize_Import(t *testing.T) {
	input := "import { Callout } from './components';\n\n# Hello\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tokens), 2)
	assert.Equal(t, KindImport, tokens[0].Kind)
	assert.Equal(t, "import { Callout } from './components';", tokens[0].Text)
}

func TestTokenize_Export(t *testing.T) {
	input := "export const y = { draft: true };\n\n# Hello\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, KindExport, tokens[0].Kind)
	assert.Equal(t, "export const y = { draft: true };", tokens[0].Text)
}

func TestTokenize_ExportDefaultMultiline(t *testing.T) {
	input := "export default function Layout({ children }) {\n  return <main>{children}</main>;\n}\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	assert.Equal(t, KindExport, tokens[0].Kind)
	assert.Contains(t, tokens[0].Text, "export default")
}

func TestTokenize_JsxSelfClosing(t *testing.T) {
	tokens, err := Tokenize([]byte(`<Badge label="new" />`))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	tok := tokens[0]
	assert.Equal(t, KindJsxOpen, tok.Kind)
	assert.Equal(t, "Badge", tok.Tag)
	assert.True(t, tok.SelfClosing)
	require.Len(t, tok.Attributes, 1)
	assert.Equal(t, "label", tok.Attributes[0].Name)
	assert.Equal(t, AttrString, tok.Attributes[0].Kind)
	assert.Equal(t, "new", tok.Attributes[0].Value)
}

func TestTokenize_JsxOpenClose(t *testing.T) {
	tokens, err := Tokenize([]byte(`<Callout type="warning">content</Callout>`))
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, KindJsxOpen, tokens[0].Kind)
	assert.Equal(t, "Callout", tokens[0].Tag)
	assert.False(t, tokens[0].SelfClosing)
	assert.Equal(t, KindMarkdown, tokens[1].Kind)
	assert.Equal(t, "content", tokens[1].Text)
	assert.Equal(t, KindJsxClose, tokens[2].Kind)
	assert.Equal(t, "Callout", tokens[2].Tag)
}

func TestTokenize_JsxBooleanAttribute(t *testing.T) {
	tokens, err := Tokenize([]byte("<Modal open />"))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Len(t, tokens[0].Attributes, 1)
	assert.Equal(t, "open", tokens[0].Attributes[0].Name)
	assert.Equal(t, AttrAbsent, tokens[0].Attributes[0].Kind)
}

func TestTokenize_Expression(t *testing.T) {
	tokens, err := Tokenize([]byte("The answer is {40 + 2}."))
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "The answer is ", tokens[0].Text)
	assert.Equal(t, KindExpression, tokens[1].Kind)
	assert.Equal(t, "40 + 2", tokens[1].Text)
	assert.Equal(t, ".", tokens[2].Text)
}

func TestTokenize_NestedBracesInExpression(t *testing.T) {
	tokens, err := Tokenize([]byte("{obj.map(x => { return x; })}"))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "obj.map(x => { return x; })", tokens[0].Text)
}

func TestTokenize_MarkdownPassthrough(t *testing.T) {
	input := "# Hello\n\nA paragraph with **bold** and *italic*.\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, input, tokens[0].Text)
}

func TestTokenize_LowercaseTagsAreJsx(t *testing.T) {
	tokens, err := Tokenize([]byte("<div>hello</div>"))
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "div", tokens[0].Tag)
	assert.Equal(t, "hello", tokens[1].Text)
	assert.Equal(t, "div", tokens[2].Tag)
}

func TestTokenize_HTMLCommentNotParsedAsTag(t *testing.T) {
	tokens, err := Tokenize([]byte("<!-- this is a comment -->"))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, KindMarkdown, tokens[0].Kind)
}

func TestTokenize_AutolinkNotParsedAsTag(t *testing.T) {
	tokens, err := Tokenize([]byte("<http://example.com>"))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, KindMarkdown, tokens[0].Kind)
}

func TestTokenize_ExpressionAttrValue(t *testing.T) {
	tokens, err := Tokenize([]byte(`<Comp value={42} />`))
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Len(t, tokens[0].Attributes, 1)
	assert.Equal(t, AttrExpression, tokens[0].Attributes[0].Kind)
	assert.Equal(t, "42", tokens[0].Attributes[0].Value)
}

func TestTokenize_CodeFenceSuppressesJsxDetection(t *testing.T) {
	input := "Text before.\n\n```jsx\n<Component prop={1} />\n```\n\nText after.\n"
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.NotEqual(t, KindJsxOpen, tok.Kind, "fenced code should not be tokenized as JSX")
	}
}

func TestTokenize_InlineCodeSuppressesJsxDetection(t *testing.T) {
	tokens, err := Tokenize([]byte("Use `<Foo />` in your markup."))
	require.NoError(t, err)
	for _, tok := range tokens {
		assert.NotEqual(t, KindJsxOpen, tok.Kind)
	}
}

func TestTokenize_KitchenSinkTokenTypes(t *testing.T) {
	input := `---
title: Kitchen Sink
author: Test
---

import { Callout } from './components';
import CodeBlock from './CodeBlock';
export const meta = { draft: true };

# Welcome

This is a paragraph with an [internal link](/docs/getting-started) and an
![image](/assets/logo.png "Logo").

<Callout type="warning">
  Watch out for **bold** and *italic* inside JSX.
</Callout>

Here is an inline component: <Badge label="new" />.

The answer is {40 + 2}.
`
	tokens, err := Tokenize([]byte(input))
	require.NoError(t, err)

	counts := map[Kind]int{}
	for _, tok := range tokens {
		counts[tok.Kind]++
	}
	assert.Equal(t, 1, counts[KindFrontmatter])
	assert.Equal(t, 2, counts[KindImport])
	assert.Equal(t, 1, counts[KindExport])
	assert.GreaterOrEqual(t, counts[KindJsxOpen], 2)
	assert.GreaterOrEqual(t, counts[KindJsxClose], 1)
	assert.Equal(t, 1, counts[KindExpression])
	assert.Contains(t, tokens[0].Text, "title: Kitchen Sink")
}

func TestTokenize_UnclosedFrontmatter(t *testing.T) {
	input := "---\ntitle: Hello\n\n# No closing fence\n"
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedFrontmatter, terr.Kind)
	assert.Equal(t, 0, terr.Offset)
}

func TestTokenize_UnclosedJsxTag(t *testing.T) {
	input := `<Callout type="x"`
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedJsxTag, terr.Kind)
}

func TestTokenize_UnclosedJsxCloseTag(t *testing.T) {
	input := `text </Callout`
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedJsxTag, terr.Kind)
}

func TestTokenize_UnclosedStringInAttribute(t *testing.T) {
	input := `<Badge label="new />`
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedString, terr.Kind)
}

func TestTokenize_UnclosedExpression(t *testing.T) {
	input := "The answer is {40 + 2."
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedExpression, terr.Kind)
}

func TestTokenize_UnclosedExpressionInAttribute(t *testing.T) {
	input := `<Comp value={42 />`
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnclosedExpression, terr.Kind)
}

func TestTokenize_UnexpectedCharInTag(t *testing.T) {
	input := `<Badge {foo} />`
	_, err := Tokenize([]byte(input))
	require.Error(t, err)
	var terr *TokenizeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, UnexpectedCharInTag, terr.Kind)
}

func TestTokenize_LosslessSpanCoverage(t *testing.T) {
	inputs := []string{
		"---\ntitle: X\n---\n\n# H\n",
		`<Callout type="warning">Watch out **now**.</Callout>`,
		"The answer is {40 + 2}.",
		"import { X } from \"./x\";\nexport const y = 1;\n\n# H\n",
	}
	for _, input := range inputs {
		src := []byte(input)
		tokens, err := Tokenize(src)
		require.NoError(t, err)
		require.NotEmpty(t, tokens)
		assert.Equal(t, 0, tokens[0].Span.Start)
		for i := 1; i < len(tokens); i++ {
			assert.Equal(t, tokens[i-1].Span.End, tokens[i].Span.Start, "span %d should start where %d ended", i, i-1)
		}
		assert.Equal(t, len(src), tokens[len(tokens)-1].Span.End)
	}
}

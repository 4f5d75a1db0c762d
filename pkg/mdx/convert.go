package mdx

import "strings"

// Convert runs the full pipeline — tokenize, parse, transform, rewrite,
// trim — on source, returning the resulting Markdown or the first error
// encountered. It is a pure function of (source, config): no global
// state, no I/O, safe to call concurrently from multiple goroutines over
// distinct inputs sharing one *Config, since Config is read-only for the
// duration of a call.
func Convert(source string, config *Config) (string, error) {
	return ConvertWithResolver(source, config, NoResolver{})
}

// ConvertWithResolver is Convert with an explicit ComponentResolver,
// letting a host override element rendering ahead of Config.Components.
func ConvertWithResolver(source string, config *Config, resolver ComponentResolver) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return "", &ConvertError{Stage: "config", Err: err}
	}

	tokens, err := Tokenize([]byte(source))
	if err != nil {
		return "", &ConvertError{Stage: "tokenize", Err: err}
	}

	tree, err := Parse(tokens)
	if err != nil {
		return "", &ConvertError{Stage: "parse", Err: err}
	}

	rendered, err := Transform(tree, config, resolver)
	if err != nil {
		return "", &ConvertError{Stage: "transform", Err: err}
	}

	rewritten := Rewrite(rendered, &config.Markdown)

	return trimOutput(rewritten), nil
}

// trimOutput collapses any run of 3+ consecutive newlines to 2 (so at most
// one blank line separates content), strips trailing whitespace-only
// lines, and ensures the result ends in exactly one newline.
func trimOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var out strings.Builder
	blank := 0
	for _, r := range s {
		if r == '\n' {
			blank++
			if blank <= 2 {
				out.WriteRune(r)
			}
			continue
		}
		blank = 0
		out.WriteRune(r)
	}

	trimmed := strings.TrimRight(out.String(), " \t\n")
	return trimmed + "\n"
}

package scanner

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// StringifyExpression renders an attribute-value expression as text on a
// best-effort basis. It is total over the node kinds below and never
// fails hard: an unsupported shape returns ("", false), which callers
// treat as "value unknown", not an error.
func StringifyExpression(node *ts.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}

	switch node.Kind() {
	case "string":
		return stringContent(node, source), true

	case "number", "true", "false", "null", "undefined":
		return node.Utf8Text(source), true

	case "identifier", "member_expression", "nested_identifier",
		"property_identifier", "subscript_expression":
		return node.Utf8Text(source), true

	case "call_expression":
		return node.Utf8Text(source), true

	case "arrow_function", "function_expression", "function":
		return node.Utf8Text(source), true

	case "template_string":
		return foldTemplateString(node, source), true

	case "object":
		// Opaque placeholder: object literals are not rendered member
		// by member.
		return "[object]", true

	case "array":
		return "[array]", true

	case "parenthesized_expression":
		if inner := firstExpressionChild(node); inner != nil {
			return StringifyExpression(inner, source)
		}
		return "", false

	case "unary_expression":
		// Covers negative number literals like {-1}.
		return node.Utf8Text(source), true

	case "as_expression", "non_null_expression", "satisfies_expression":
		// TypeScript wrappers: unwrap to the underlying expression.
		if inner := firstExpressionChild(node); inner != nil {
			return StringifyExpression(inner, source)
		}
		return "", false

	default:
		return "", false
	}
}

// foldTemplateString joins a template literal's fragments, folding
// substitutions whose inner expression stringifies; anything else keeps
// its raw ${...} text.
func foldTemplateString(node *ts.Node, source []byte) string {
	var b strings.Builder
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_fragment":
			b.WriteString(child.Utf8Text(source))
		case "template_substitution":
			if inner := firstExpressionChild(child); inner != nil {
				if v, ok := StringifyExpression(inner, source); ok {
					b.WriteString(v)
					continue
				}
			}
			b.WriteString(child.Utf8Text(source))
		}
	}
	return b.String()
}

// stringContent returns the text inside a string literal, without quotes.
func stringContent(node *ts.Node, source []byte) string {
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Kind() == "string_fragment" {
			return child.Utf8Text(source)
		}
	}
	text := node.Utf8Text(source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// firstExpressionChild returns the first child that is not punctuation.
func firstExpressionChild(node *ts.Node) *ts.Node {
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "(", ")", "{", "}", "${", "as", "satisfies", "!", "comment":
		default:
			return child
		}
	}
	return nil
}

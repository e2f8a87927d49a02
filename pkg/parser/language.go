// Package parser wraps tree-sitter with pooled parsers for the JavaScript
// and TypeScript grammars (including their JSX/TSX variants).
package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies a supported source grammar.
type Language int

const (
	LanguageTypeScript Language = iota
	LanguageJavaScript
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage maps a file path to its grammar by extension.
// Returns LanguageUnknown for extensions outside the allow-list.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether the path needs the TSX variant of the
// TypeScript grammar.
func IsTSXFile(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".tsx")
}

// SupportedExtensions returns the extension allow-list shared with the
// file resolver.
func SupportedExtensions() []string {
	return []string{".tsx", ".jsx", ".ts", ".js", ".mts", ".cts", ".mjs", ".cjs"}
}

// IsSupportedFile reports whether the path carries an allowed extension.
func IsSupportedFile(filePath string) bool {
	return DetectLanguage(filePath) != LanguageUnknown
}

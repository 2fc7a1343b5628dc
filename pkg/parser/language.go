package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies a grammar the scanner knows how to parse.
type Language int

const (
	// LanguageTypeScript covers .ts and .tsx (the latter with JSX enabled).
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js and .jsx.
	LanguageJavaScript
	// LanguageCSS covers global stylesheets read by the theme loader.
	LanguageCSS
	LanguageUnknown
)

func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	case LanguageCSS:
		return "css"
	default:
		return "unknown"
	}
}

// DetectLanguage maps a file extension to a Language.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".css":
		return LanguageCSS
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether the file needs the TSX grammar.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsComponentSource reports whether a path can hold component definitions.
func IsComponentSource(filePath string) bool {
	lang := DetectLanguage(filePath)
	return lang == LanguageTypeScript || lang == LanguageJavaScript
}

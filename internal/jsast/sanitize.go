package jsast

import "strings"

// reservedWords are names that cannot be used as JavaScript identifiers.
var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true,
	"default": true, "delete": true, "do": true, "else": true,
	"enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "let": true,
	"new": true, "null": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true,
}

// ToIdentifier coerces an oracle proposal into valid JavaScript
// identifier syntax: invalid characters are dropped, word boundaries
// they leave behind become camelCase humps, a leading digit or reserved
// word gets an underscore prefix, and an empty result falls back to "_".
func ToIdentifier(name string) string {
	var sb strings.Builder
	upperNext := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
			if upperNext && r >= 'a' && r <= 'z' {
				r += 'A' - 'a'
			}
			sb.WriteRune(r)
			upperNext = false
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
			upperNext = false
		default:
			if sb.Len() > 0 {
				upperNext = true
			}
		}
	}

	out := sb.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if reservedWords[out] {
		out = "_" + out
	}
	return out
}

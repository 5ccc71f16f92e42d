package template

import (
	"strings"
)

// applyFilter transforms one field value per §4.G.5's filter pipeline.
// Unknown filter names pass the value through unchanged rather than erroring
// — a template shouldn't fail a whole export session over one typo'd
// filter, matching the "degrade, don't abort" posture used elsewhere.
func applyFilter(value string, f Filter) string {
	switch f.Name {
	case "lower":
		return strings.ToLower(value)
	case "upper":
		return strings.ToUpper(value)
	case "strip":
		return strings.TrimSpace(value)
	case "titlecase":
		return titleCase(value)
	case "capitalize":
		if value == "" {
			return value
		}
		return strings.ToUpper(value[:1]) + value[1:]
	case "braces":
		return "{" + value + "}"
	case "parens":
		return "(" + value + ")"
	case "brackets":
		return "[" + value + "]"
	case "remove":
		return strings.ReplaceAll(value, f.Arg, "")
	case "filter":
		if strings.Contains(value, f.Arg) {
			return value
		}
		return ""
	case "shell_quote":
		return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
	case "sanitize":
		return sanitizePathComponent(value)
	default:
		return value
	}
}

// titleCase upper-cases the first letter of each whitespace-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// sanitizePathComponent strips characters that can't safely appear in a
// filesystem path component.
func sanitizePathComponent(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", `"`, "-", "<", "-", ">", "-", "|", "-")
	return replacer.Replace(s)
}

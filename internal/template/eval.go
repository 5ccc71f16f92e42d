package template

import (
	"strings"

	"github.com/mdriscoll/photoslib/internal/model"
)

// Result is the outcome of rendering one template against one asset: the
// cross product of every multi-valued field's expansions, plus the list of
// field names the renderer didn't recognize (§4.G.9), so callers can warn
// without failing the export.
type Result struct {
	Values    []string
	Unmatched []string
}

// Render evaluates ast against one asset, expanding every multi-valued
// field into a cross product of complete output strings (design notes §9:
// "{album}" on an asset in three albums yields three rendered strings, one
// per album, not a single joined string).
func Render(ast *AST, lib *model.Library, a *model.Asset) Result {
	return RenderWithExif(ast, lib, a, nil)
}

// RenderWithExif behaves like Render but additionally resolves
// `{exiftool:GROUP:TAG}` fields (§4.G.1) from a pre-fetched per-asset tag
// map, since the template package itself never shells out to exiftool —
// only the export engine does, through the internal/exiftags readers it
// opens for path planning and in each worker.
func RenderWithExif(ast *AST, lib *model.Library, a *model.Asset, exif map[string]string) Result {
	rendered := []string{""}
	var unmatched []string

	for _, part := range ast.Parts {
		if part.Field == nil {
			rendered = appendLiteral(rendered, part.Literal)
			continue
		}

		values, matched := renderField(lib, a, part.Field, exif)
		if !matched {
			unmatched = append(unmatched, part.Field.Name)
			continue
		}
		rendered = crossProduct(rendered, values)
	}

	return Result{Values: rendered, Unmatched: unmatched}
}

func appendLiteral(prefixes []string, lit string) []string {
	out := make([]string, len(prefixes))
	for i, p := range prefixes {
		out[i] = p + lit
	}
	return out
}

func crossProduct(prefixes, values []string) []string {
	if len(values) == 0 {
		return prefixes
	}
	out := make([]string, 0, len(prefixes)*len(values))
	for _, p := range prefixes {
		for _, v := range values {
			out = append(out, p+v)
		}
	}
	return out
}

// renderField resolves one field's raw values, applies the `+`/delim join,
// replacements, filters, the path-separator override, and finally the
// conditional/default fallback described by §4.G.2-8.
func renderField(lib *model.Library, a *model.Asset, f *Field, exif map[string]string) (values []string, matched bool) {
	raw, ok := resolveField(lib, a, f.Name, f.Subfield, exif)
	if !ok {
		return nil, false
	}

	if f.Join {
		raw = []string{strings.Join(raw, f.JoinDelim)}
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, r := range f.Replacements {
			v = strings.ReplaceAll(v, r.Find, r.Replace)
		}
		for _, filt := range f.Filters {
			v = applyFilter(v, filt)
		}
		if f.PathSep != "" {
			v = strings.ReplaceAll(v, "/", f.PathSep)
		}
		out = append(out, v)
	}

	if f.HasConditional {
		cond := conditionHolds(f, out, lib, a, exif)
		branch := f.FalseBranch
		if cond {
			branch = f.TrueBranch
		}
		res := RenderWithExif(branch, lib, a, exif)
		return res.Values, true
	}

	if !isTruthy(out) {
		if f.HasDefault {
			return []string{f.Default}, true
		}
		// §4.G.8: where no default clause is present, substitute "_".
		return []string{"_"}, true
	}
	return out, true
}

func isTruthy(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

// conditionHolds evaluates a field's conditional test: a comparator clause
// against a rendered value template when present (§4.G.6), otherwise plain
// truthiness (§4.G.7).
func conditionHolds(f *Field, out []string, lib *model.Library, a *model.Asset, exif map[string]string) bool {
	if f.Comparator == nil {
		return isTruthy(out)
	}
	want := RenderWithExif(f.Comparator.Value, lib, a, exif).Values

	result := false
	for _, have := range out {
		for _, w := range want {
			if compareValues(f.Comparator.Op, have, w) {
				result = true
				break
			}
		}
		if result {
			break
		}
	}
	if f.Comparator.Not {
		result = !result
	}
	return result
}

func compareValues(op, have, want string) bool {
	switch op {
	case "contains":
		return strings.Contains(have, want)
	case "matches":
		return have == want
	case "startswith":
		return strings.HasPrefix(have, want)
	case "endswith":
		return strings.HasSuffix(have, want)
	case "==":
		return have == want
	case "!=":
		return have != want
	case "<":
		return have < want
	case "<=":
		return have <= want
	case ">":
		return have > want
	case ">=":
		return have >= want
	default:
		return false
	}
}

// RenderString is a convenience wrapper for the common case of a
// single-valued template (e.g. a flat filename), joining any multi-value
// expansion with "_" rather than returning the full cross product.
func RenderString(ast *AST, lib *model.Library, a *model.Asset) (string, []string) {
	res := Render(ast, lib, a)
	return strings.Join(res.Values, "_"), res.Unmatched
}

// RenderStringWithExif is RenderWithExif's single-valued convenience form.
func RenderStringWithExif(ast *AST, lib *model.Library, a *model.Asset, exif map[string]string) (string, []string) {
	res := RenderWithExif(ast, lib, a, exif)
	return strings.Join(res.Values, "_"), res.Unmatched
}

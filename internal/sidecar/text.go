package sidecar

import (
	"github.com/mdriscoll/photoslib/internal/model"
	"github.com/mdriscoll/photoslib/internal/template"
)

// RenderText renders a template-driven plain-text sidecar, taking the first
// expansion when the template's fields are multi-valued (a text sidecar has
// exactly one body, unlike a path template's legitimate one-file-per-value
// fan-out).
func RenderText(ast *template.AST, lib *model.Library, a *model.Asset) (body string, unmatched []string) {
	res := template.Render(ast, lib, a)
	if len(res.Values) == 0 {
		return "", res.Unmatched
	}
	return res.Values[0], res.Unmatched
}

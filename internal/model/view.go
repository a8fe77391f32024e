package model

import (
	"html/template"
	"io"
)

type View interface {
	Module() string
	Render(w io.Writer, data ViewData) error
}

// ViewData is passed to a view on render.
// Outlet holds the already rendered child view, if any.
type ViewData struct {
	Outlet    template.HTML
	RouteName string
	RoutePath string
	Links     map[string]string
}

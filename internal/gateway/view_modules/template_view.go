package view_modules

import (
	"fmt"
	"html/template"
	"io"

	"github.com/horockey/settingsapp/internal/model"
)

var _ model.View = &templateView{}

type templateView struct {
	module string
	tmpl   *template.Template
}

// Parses src as html/template and wraps it into model.View.
func NewTemplateView(module string, src string) (model.View, error) {
	tmpl, err := template.New(module).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	return &templateView{
		module: module,
		tmpl:   tmpl,
	}, nil
}

func (v *templateView) Module() string {
	return v.module
}

func (v *templateView) Render(w io.Writer, data model.ViewData) error {
	if err := v.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing template %s: %w", v.module, err)
	}
	return nil
}

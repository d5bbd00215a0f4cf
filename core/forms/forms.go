// Package forms defines the funding application forms published on the site.
package forms

import (
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

const (
	AwardsForAllID    = "awards-for-all"
	StandardEnquiryID = "standard-enquiry"
)

// NewRegistry builds every form and registers it.
func NewRegistry() (*form.Registry, error) {
	reg := form.NewRegistry()
	for _, build := range []func() (*form.Form, error){NewAwardsForAll, NewStandardEnquiry} {
		f, err := build()
		if err != nil {
			return nil, err
		}
		if err = reg.Register(f); err != nil {
			return nil, errors.Wrap(err, "registering form")
		}
	}
	return reg, nil
}

type sectionDef struct {
	slug  string
	title core.Copy
	steps []*form.Step
}

func build(id string, title core.Copy, sections ...sectionDef) (*form.Form, error) {
	f := form.New(id, title)
	for _, def := range sections {
		sec, err := f.AddSection(def.slug, def.title)
		if err != nil {
			return nil, err
		}
		for _, st := range def.steps {
			if err = sec.RegisterStep(st); err != nil {
				return nil, errors.Wrapf(err, "section %s", def.slug)
			}
		}
	}
	return f, nil
}

func yesNo() []fields.Option {
	return []fields.Option{
		{Value: "yes", Label: core.Copy{En: "Yes", Cy: "Ydy"}},
		{Value: "no", Label: core.Copy{En: "No", Cy: "Nac ydy"}},
	}
}

func countries(withUKWide bool) []fields.Option {
	opts := []fields.Option{
		{Value: "england", Label: core.Copy{En: "England", Cy: "Lloegr"}},
		{Value: "northern-ireland", Label: core.Copy{En: "Northern Ireland", Cy: "Gogledd Iwerddon"}},
		{Value: "scotland", Label: core.Copy{En: "Scotland", Cy: "Yr Alban"}},
		{Value: "wales", Label: core.Copy{En: "Wales", Cy: "Cymru"}},
	}
	if withUKWide {
		opts = append(opts, fields.Option{Value: "uk-wide", Label: core.Copy{En: "UK-wide", Cy: "Ledled y DU"}})
	}
	return opts
}

// dataEquals shows a step only when a field has the given answer.
func dataEquals(name, value string) func(form.Data) bool {
	return func(data form.Data) bool {
		s, _ := data[name].(string)
		return s == value
	}
}

func singleFieldset(legend core.Copy, flds ...form.Field) []form.Fieldset {
	return []form.Fieldset{{Legend: legend, Fields: flds}}
}

func addressField(name string, label core.Copy) form.Field {
	return form.Field{
		Name:  name,
		Label: label,
		Type:  fields.TypeAddress,
		Rules: "required",
		Messages: map[string]core.Copy{
			"required": {En: "Enter a full UK address", Cy: "Rhowch gyfeiriad llawn yn y DU"},
		},
	}
}

func emailField(name string) form.Field {
	return form.Field{
		Name:  name,
		Label: core.Copy{En: "Email", Cy: "E-bost"},
		Type:  fields.TypeEmail,
		Rules: "required,email",
		Messages: map[string]core.Copy{
			"required": {En: "Enter an email address", Cy: "Rhowch gyfeiriad e-bost"},
			"email":    {En: "Email address must be in the correct format, like name@example.com", Cy: "Rhaid i'r cyfeiriad e-bost fod yn y fformat cywir, e.e. enw@example.com"},
		},
	}
}

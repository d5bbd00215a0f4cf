// Package form composes fields into fieldsets, steps, sections and forms,
// validates what applicants submit step by step and tracks their progress.
package form

import (
	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
)

// Data holds the answers of an application, keyed by field name.
type Data map[string]interface{}

// ConditionalOn shows a field only when another field has a given value.
type ConditionalOn struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Field struct {
	Name        string          `json:"name"`
	Label       core.Copy       `json:"label"`
	Explanation core.Copy       `json:"explanation,omitempty"`
	Type        fields.Type     `json:"type"`
	Rules       string          `json:"-"` // validator tags, eg. "required,max=80"
	Options     []fields.Option `json:"options,omitempty"`

	// Messages overrides the text of error codes for this field.
	// Parts of compound values use "<part>.<code>" keys; "base" is the fallback.
	Messages map[string]core.Copy `json:"-"`

	ConditionalOn *ConditionalOn `json:"conditionalOn,omitempty"`
	IsConditional bool           `json:"isConditional,omitempty"`

	Value interface{} `json:"value,omitempty"`
}

// IsRequired reports whether the field must be answered.
func (f Field) IsRequired() bool {
	return fields.HasRule(f.Rules, "required")
}

// Format renders the value of the field for people to read.
func (f Field) Format(l core.Locale) string {
	return fields.Format(f.Type, f.Value, fields.FormatOptions{Locale: l, Options: f.Options})
}

type Fieldset struct {
	Legend core.Copy `json:"legend"`
	Intro  core.Copy `json:"intro,omitempty"`
	Fields []Field   `json:"fields"`
}

type Step struct {
	Title     core.Copy  `json:"title"`
	Fieldsets []Fieldset `json:"fieldsets"`

	// Condition decides whether the step applies given the answers so far; nil means it always does.
	Condition func(data Data) bool `json:"-"`
}

// IsShown reports whether the step applies to the given answers.
func (s *Step) IsShown(data Data) bool {
	return s.Condition == nil || s.Condition(data)
}

// Fields returns the fields of every fieldset of the step.
func (s *Step) Fields() []Field {
	var out []Field
	for _, fs := range s.Fieldsets {
		out = append(out, fs.Fields...)
	}
	return out
}

// WithValues returns a copy of the step whose fields carry their value from `values`.
// The step itself is left untouched.
func (s *Step) WithValues(values Data) Step {
	cp := *s
	cp.Fieldsets = make([]Fieldset, len(s.Fieldsets))
	for i, fs := range s.Fieldsets {
		flds := make([]Field, len(fs.Fields))
		for j, f := range fs.Fields {
			f.Value = values[f.Name]
			flds[j] = f
		}
		fs.Fields = flds
		cp.Fieldsets[i] = fs
	}
	return cp
}

// Validators returns one validator per field of the step.
func (s *Step) Validators() []FieldValidator {
	var vals []FieldValidator
	for _, f := range s.Fields() {
		vals = append(vals, NewFieldValidator(f))
	}
	return vals
}

type Section struct {
	Slug    string    `json:"slug"`
	Title   core.Copy `json:"title"`
	Summary core.Copy `json:"summary,omitempty"`

	form  *Form
	steps []*Step
}

// Steps returns the steps of the section, sealing its form. See Form.Sections for definition errors.
func (s *Section) Steps() []*Step {
	_ = s.form.seal()
	return s.steps
}

// Fields returns the fields of every step of the section.
func (s *Section) Fields() []Field {
	var out []Field
	for _, st := range s.Steps() {
		out = append(out, st.Fields()...)
	}
	return out
}

// FieldsShown returns the fields of the steps that apply to the given answers.
func (s *Section) FieldsShown(data Data) []Field {
	var out []Field
	for _, st := range s.Steps() {
		if st.IsShown(data) {
			out = append(out, st.Fields()...)
		}
	}
	return out
}

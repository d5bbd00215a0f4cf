package form

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

var (
	ErrFormSealed   = errors.New("form: steps have already been read")
	ErrStepNotFound = errors.New("form: step not found")
)

// DefinitionError reports a mistake in the way a form is put together.
type DefinitionError struct {
	FormID string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("form %s: %s", e.FormID, e.Reason)
}

// Form is an ordered sequence of sections of steps.
// Steps can be registered until the steps of the form are first read, after which its order is fixed.
type Form struct {
	ID    string    `json:"id"`
	Title core.Copy `json:"title"`

	mu       sync.Mutex
	sections []*Section
	sealed   bool
	sealErr  error
}

func New(id string, title core.Copy) *Form {
	return &Form{ID: id, Title: title}
}

// AddSection appends a new, empty section to the form.
func (f *Form) AddSection(slug string, title core.Copy) (*Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sealed {
		return nil, ErrFormSealed
	}
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(slug, "slug"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "form.AddSection")
	}
	for _, s := range f.sections {
		if s.Slug == slug {
			return nil, &DefinitionError{FormID: f.ID, Reason: "duplicate section " + slug}
		}
	}

	sec := &Section{Slug: slug, Title: title, form: f}
	f.sections = append(f.sections, sec)
	return sec, nil
}

// RegisterStep appends a step to the section.
// It fails with ErrFormSealed once the steps of the form have been read for rendering.
func (s *Section) RegisterStep(step *Step) error {
	f := s.form
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sealed {
		return ErrFormSealed
	}
	if step == nil {
		return errors.New("form.RegisterStep: nil step")
	}
	if err := vala.BeginValidation().Validate(
		vala.GreaterThan(len(step.Fieldsets), 0, "step.Fieldsets"),
	).Check(); err != nil {
		return errors.Wrap(err, "form.RegisterStep")
	}
	s.steps = append(s.steps, step)
	return nil
}

// Seal fixes the steps of the form and resolves its conditional fields.
// It is called the first time the steps are read and returns the same result on every call.
func (f *Form) Seal() error {
	return f.seal()
}

func (f *Form) seal() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sealed {
		return f.sealErr
	}
	f.sealed = true
	f.sealErr = f.resolve()
	return f.sealErr
}

// resolve checks field names are unique and links conditional fields to the option that reveals them.
func (f *Form) resolve() error {
	index := make(map[string]*Field)
	var conditionals []*Field

	for _, sec := range f.sections {
		for _, st := range sec.steps {
			for i := range st.Fieldsets {
				fs := &st.Fieldsets[i]
				for j := range fs.Fields {
					fld := &fs.Fields[j]
					if fld.Name == "" {
						return &DefinitionError{FormID: f.ID, Reason: "field without a name in section " + sec.Slug}
					}
					if _, ok := index[fld.Name]; ok {
						return &DefinitionError{FormID: f.ID, Reason: "duplicate field " + fld.Name}
					}
					index[fld.Name] = fld
					if fld.ConditionalOn != nil {
						conditionals = append(conditionals, fld)
					}
				}
			}
		}
	}

	for _, fld := range conditionals {
		cond := fld.ConditionalOn
		trigger, ok := index[cond.Name]
		if !ok {
			return &DefinitionError{FormID: f.ID, Reason: fmt.Sprintf("field %s is conditional on unknown field %s", fld.Name, cond.Name)}
		}
		found := false
		for k := range trigger.Options {
			opt := &trigger.Options[k]
			if opt.Value == cond.Value {
				opt.Controls = append(opt.Controls, fld.Name)
				found = true
				break
			}
		}
		if !found {
			return &DefinitionError{
				FormID: f.ID,
				Reason: fmt.Sprintf("field %s is conditional on unknown option %s of %s", fld.Name, cond.Value, cond.Name),
			}
		}
		fld.IsConditional = true
	}
	return nil
}

// Sections returns the sections of the form, sealing it. A definition error found while sealing
// is not returned here; it is kept and returned by Seal and Registry.Register.
func (f *Form) Sections() []*Section {
	_ = f.seal()
	return f.sections
}

// Section returns the section with the given slug.
func (f *Form) Section(slug string) (*Section, bool) {
	for _, s := range f.Sections() {
		if s.Slug == slug {
			return s, true
		}
	}
	return nil, false
}

// StepRef addresses a step by its section slug and 1-based position in the section.
type StepRef struct {
	Section string `json:"section"`
	Number  int    `json:"step"`
}

func (r StepRef) String() string {
	return fmt.Sprintf("%s/%d", r.Section, r.Number)
}

// ParseStepRef parses "<section>/<number>" references. A bare section addresses its first step.
func ParseStepRef(s string) (StepRef, error) {
	parts := strings.SplitN(strings.Trim(s, "/"), "/", 2)
	ref := StepRef{Section: parts[0], Number: 1}
	if len(parts) == 2 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return StepRef{}, ErrStepNotFound
		}
		ref.Number = n
	}
	if ref.Section == "" {
		return StepRef{}, ErrStepNotFound
	}
	return ref, nil
}

// Steps returns the steps of every section in order, sealing the form.
func (f *Form) Steps() []*Step {
	var out []*Step
	for _, s := range f.Sections() {
		out = append(out, s.steps...)
	}
	return out
}

// Step returns the step at ref, sealing the form.
func (f *Form) Step(ref StepRef) (*Step, error) {
	sec, ok := f.Section(ref.Section)
	if !ok || ref.Number < 1 || ref.Number > len(sec.steps) {
		return nil, ErrStepNotFound
	}
	return sec.steps[ref.Number-1], nil
}

// Field returns the field with the given name.
func (f *Form) Field(name string) (Field, bool) {
	for _, st := range f.Steps() {
		for _, fld := range st.Fields() {
			if fld.Name == name {
				return fld, true
			}
		}
	}
	return Field{}, false
}

// Fields returns every field of the form.
func (f *Form) Fields() []Field {
	var out []Field
	for _, st := range f.Steps() {
		out = append(out, st.Fields()...)
	}
	return out
}

// Validators returns the validators of every step of the form.
func (f *Form) Validators() []FieldValidator {
	var vals []FieldValidator
	for _, st := range f.Steps() {
		vals = append(vals, st.Validators()...)
	}
	return vals
}

type position struct {
	ref  StepRef
	step *Step
}

func (f *Form) positions() []position {
	var out []position
	for _, sec := range f.Sections() {
		for i, st := range sec.steps {
			out = append(out, position{ref: StepRef{Section: sec.Slug, Number: i + 1}, step: st})
		}
	}
	return out
}

// Next returns the first step after ref that applies to the answers, false when ref is the last one.
func (f *Form) Next(ref StepRef, data Data) (StepRef, bool) {
	pos := f.positions()
	for i, p := range pos {
		if p.ref != ref {
			continue
		}
		for _, n := range pos[i+1:] {
			if n.step.IsShown(data) {
				return n.ref, true
			}
		}
		break
	}
	return StepRef{}, false
}

// Previous returns the last step before ref that applies to the answers, false when ref is the first one.
func (f *Form) Previous(ref StepRef, data Data) (StepRef, bool) {
	pos := f.positions()
	for i, p := range pos {
		if p.ref != ref {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if pos[j].step.IsShown(data) {
				return pos[j].ref, true
			}
		}
		break
	}
	return StepRef{}, false
}

// First returns the first step of the form.
func (f *Form) First() (StepRef, bool) {
	pos := f.positions()
	if len(pos) == 0 {
		return StepRef{}, false
	}
	return pos[0].ref, true
}

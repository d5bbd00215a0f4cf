package form

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
)

// baseMessage is the key of the fallback message of a field.
const baseMessage = "base"

// FieldValidator checks the submitted value of one field against the field's own rules.
type FieldValidator struct {
	Name     string
	Type     fields.Type
	Rules    string
	Messages map[string]core.Copy
	// ShownWhen is set for conditional fields. While it does not hold, an empty value is accepted.
	ShownWhen *ConditionalOn
}

// NewFieldValidator derives the validator of a field. Choice fields only accept their options.
func NewFieldValidator(f Field) FieldValidator {
	return FieldValidator{
		Name:      f.Name,
		Type:      f.Type,
		Rules:     rulesOf(f),
		Messages:  f.Messages,
		ShownWhen: f.ConditionalOn,
	}
}

// isHidden reports whether the field is conditional and its trigger value isn't selected.
func (fv FieldValidator) isHidden(values Data) bool {
	return fv.ShownWhen != nil && !fields.HasValue(values[fv.ShownWhen.Name], fv.ShownWhen.Value)
}

func rulesOf(f Field) string {
	if len(f.Options) == 0 || !(f.Type == fields.TypeRadio || f.Type == fields.TypeCheckbox) {
		return f.Rules
	}
	vals := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		vals = append(vals, o.Value)
	}
	oneof := "oneof=" + strings.Join(vals, " ")

	var rules []string
	if f.Rules != "" {
		rules = append(rules, f.Rules)
	} else {
		rules = append(rules, "omitempty")
	}
	if f.Type == fields.TypeCheckbox {
		rules = append(rules, "dive")
	}
	return strings.Join(append(rules, oneof), ",")
}

// Validate returns the first failure of the value, nil if it is valid.
func (fv FieldValidator) Validate(validate *validator.Validate, raw interface{}) *fields.Failure {
	_, failure := fields.Check(validate, fv.Type, raw, fv.Rules)
	return failure
}

// Message returns the text of a failure: the field's own message for the code, then its base message,
// then the locale translation of the code, then a generic message.
func (fv FieldValidator) Message(failure *fields.Failure, trans ut.Translator, l core.Locale) string {
	for _, key := range []string{failure.Key(), failure.Code, baseMessage} {
		if msg, ok := fv.Messages[key]; ok {
			return msg.In(l)
		}
	}
	if msg, ok := failure.Translate(trans); ok {
		return msg
	}
	return fields.GenericMessage(l)
}

// Validator validates submissions with the field rules registered on validate,
// in the language of the applicant.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
}

// NewValidator registers the core and field rules on a new validator.
func NewValidator() *Validator {
	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	fields.InitValidators(validate, uni)
	return &Validator{validate: validate, uni: uni}
}

// Result is the outcome of validating a submission.
type Result struct {
	// Values holds the normalised value of every submitted field, valid or not.
	Values Data
	// Errors holds the first error of every invalid field, in field order.
	Errors []core.FieldError
}

func (r Result) IsValid() bool { return len(r.Errors) == 0 }

// Err returns the errors as a core.ValidationError, nil if there are none.
func (r Result) Err() error {
	if r.IsValid() {
		return nil
	}
	return core.NewValidationError(nil, r.Errors...)
}

// ErrorFor returns the error of a field.
func (r Result) ErrorFor(name string) (core.FieldError, bool) {
	for _, e := range r.Errors {
		if e.Field == name {
			return e, true
		}
	}
	return core.FieldError{}, false
}

// String returns the value of a field if it is a string, "" otherwise.
func (r Result) String(name string) string {
	s, _ := r.Values[name].(string)
	return s
}

// StepResult is the outcome of validating one step.
type StepResult struct {
	Result
	// FieldsetErrors holds the errors of each fieldset of the step, by fieldset index.
	FieldsetErrors [][]core.FieldError
}

func (v *Validator) run(vals []FieldValidator, values Data, l core.Locale) Result {
	trans := core.GetTranslator(v.uni, l)
	res := Result{Values: make(Data)}
	for _, fv := range vals {
		raw, submitted := values[fv.Name]
		value := fields.Normalise(fv.Type, raw)
		if submitted {
			res.Values[fv.Name] = value
		}
		if fields.IsEmpty(value) && fv.isHidden(values) {
			continue
		}
		if failure := fv.Validate(v.validate, value); failure != nil {
			res.Errors = append(res.Errors, core.FieldError{
				Field: fv.Name,
				Error: fv.Message(failure, trans, l),
				Code:  failure.Code,
			})
		}
	}
	return res
}

// ValidateStep validates the values submitted for a step. A conditional field left empty is
// only required while its trigger value is selected.
func (v *Validator) ValidateStep(step *Step, values Data, l core.Locale) StepResult {
	res := StepResult{
		Result:         v.run(step.Validators(), values, l),
		FieldsetErrors: make([][]core.FieldError, len(step.Fieldsets)),
	}
	for i, fs := range step.Fieldsets {
		for _, fld := range fs.Fields {
			if e, ok := res.ErrorFor(fld.Name); ok {
				res.FieldsetErrors[i] = append(res.FieldsetErrors[i], e)
			}
		}
	}
	return res
}

// ValidateFields validates values against standalone fields.
func (v *Validator) ValidateFields(flds []Field, values Data, l core.Locale) Result {
	vals := make([]FieldValidator, 0, len(flds))
	for _, f := range flds {
		vals = append(vals, NewFieldValidator(f))
	}
	return v.run(vals, values, l)
}

// ValidateForm validates the answers to the steps of a form that apply to them.
func (v *Validator) ValidateForm(f *Form, data Data, l core.Locale) Result {
	var vals []FieldValidator
	for _, st := range f.Steps() {
		if st.IsShown(data) {
			vals = append(vals, st.Validators()...)
		}
	}
	return v.run(vals, data, l)
}

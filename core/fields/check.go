package fields

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Failure describes why a submitted value was rejected.
type Failure struct {
	Code  string // validation tag or coercion error code
	Param string
	Sub   string // part of a compound value that failed, eg. "postcode" of an address
}

// Key identifies the failure in per-field message maps, "postcode.required" for parts.
func (f *Failure) Key() string {
	if f.Sub != "" {
		return f.Sub + "." + f.Code
	}
	return f.Code
}

// Translate returns the locale text of the failure, false if there is none.
func (f *Failure) Translate(trans ut.Translator) (string, bool) {
	if f.Sub != "" {
		if s, ok := Message(trans, addressKey(f.Sub), f.Param); ok {
			return s, true
		}
	}
	return Message(trans, f.Code, f.Param)
}

// Check coerces a submitted value and validates it against a validator tag string.
// The coerced value is returned along with the first rule that failed, if any.
func Check(validate *validator.Validate, t Type, raw interface{}, rules string) (interface{}, *Failure) {
	typed, err := Coerce(t, raw)
	if err != nil {
		code := codeType
		if ce, ok := err.(*CoercionError); ok {
			code = ce.Code
		}
		return nil, &Failure{Code: code}
	}

	if t == TypeAddress {
		return typed, checkAddress(validate, typed.(Address), rules)
	}
	if rules == "" {
		return typed, nil
	}
	if err := validate.Var(typed, rules); err != nil {
		return typed, failureFrom(err, false)
	}
	return typed, nil
}

// checkAddress checks the whole address is given before checking its parts.
func checkAddress(validate *validator.Validate, addr Address, rules string) *Failure {
	if addr.IsEmpty() {
		if HasRule(rules, "required") {
			return &Failure{Code: "required"}
		}
		return nil
	}
	if err := validate.Struct(addr); err != nil {
		return failureFrom(err, true)
	}
	return nil
}

func failureFrom(err error, withSub bool) *Failure {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &Failure{Code: codeType}
	}
	fe := verrs[0]
	f := &Failure{Code: fe.Tag(), Param: fe.Param()}
	if withSub {
		f.Sub = fe.Field()
	}
	return f
}

// HasRule reports whether a validator tag string contains `tag`.
func HasRule(rules, tag string) bool {
	for _, r := range strings.Split(rules, ",") {
		if strings.SplitN(r, "=", 2)[0] == tag {
			return true
		}
	}
	return false
}

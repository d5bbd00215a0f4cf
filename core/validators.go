package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = Copy{En: "Only letters, numbers and underscores are allowed", Cy: "Dim ond llythrennau, rhifau a thanlinellau a ganiateir"}
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	notBlankTag  = "notblank"
	notBlankText = Copy{En: "This field cannot be blank", Cy: "Ni all y maes hwn fod yn wag"}

	// built-in tags whose default texts are replaced by ours
	builtinTexts = map[string]Copy{
		"required":      {En: "This field is required", Cy: "Mae'r maes hwn yn ofynnol"},
		"required_with": {En: "This field is required", Cy: "Mae'r maes hwn yn ofynnol"},
		"email":         {En: "Enter a real email address", Cy: "Rhowch gyfeiriad e-bost go iawn"},
		"min":           {En: "Must be at least {0}", Cy: "Rhaid bod o leiaf {0}"},
		"max":           {En: "Must be {0} or less", Cy: "Rhaid bod yn {0} neu lai"},
		"oneof":         {En: "Choose one of the options", Cy: "Dewiswch un o'r opsiynau"},
		"numeric":       {En: "Enter a number", Cy: "Rhowch rif"},
		"eqfield":       {En: "The values do not match", Cy: "Nid yw'r gwerthoedd yn cyfateb"},
		"uuid4":         {En: "Enter a valid identifier", Cy: "Rhowch ddynodwr dilys"},
	}
)

// InitValidators instantiates the validator for use, for every supported locale.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	_ = en_translations.RegisterDefaultTranslations(validate, GetTranslator(uni, LocaleEn))

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterLocalisedTranslation(validate, uni, alphaNumUnderTag, alphaNumUnderText)
	RegisterLocalisedTranslation(validate, uni, notBlankTag, notBlankText)

	for tag, text := range builtinTexts {
		RegisterLocalisedTranslation(validate, uni, tag, text, true)
	}
}

// RegisterLocalisedTranslation registers the English and Welsh texts of a validation tag.
func RegisterLocalisedTranslation(validate *validator.Validate, uni *ut.UniversalTranslator, tag string, text Copy, override ...bool) {
	for _, l := range Locales {
		RegisterCustomTranslation(validate, GetTranslator(uni, l), tag, text.In(l), override...)
	}
}

// RegisterCustomTranslation registers a custom translation for a validation tag.
// `{0}` in the text is replaced by the tag's parameter.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Param())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

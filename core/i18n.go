package core

import (
	"strings"

	"github.com/go-playground/locales/cy"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Locale is one of the languages the site is published in.
type Locale string

const (
	LocaleEn Locale = "en"
	LocaleCy Locale = "cy"
)

var Locales = []Locale{LocaleEn, LocaleCy}

// ParseLocale falls back to English for anything that is not Welsh.
func ParseLocale(s string) Locale {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), string(LocaleCy)) {
		return LocaleCy
	}
	return LocaleEn
}

// Copy is a bilingual piece of content.
type Copy struct {
	En string `json:"en"`
	Cy string `json:"cy"`
}

// In returns the copy for the given locale, falling back to English when there is no Welsh translation.
func (c Copy) In(l Locale) string {
	if l == LocaleCy && c.Cy != "" {
		return c.Cy
	}
	return c.En
}

func (c Copy) IsZero() bool { return c.En == "" && c.Cy == "" }

// NewUniversalTranslator returns a translator holding the English (fallback) and Welsh locales.
func NewUniversalTranslator() *ut.UniversalTranslator {
	_en := en.New()
	return ut.New(_en, _en, cy.New())
}

// GetTranslator returns the translator for a locale, which is always found as both locales are registered.
func GetTranslator(uni *ut.UniversalTranslator, l Locale) ut.Translator {
	trans, _ := uni.GetTranslator(string(l))
	return trans
}

package fields

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"

	"github.com/biglotteryfund/funding/core"
)

// NowFunc returns the current time, dates in the past or future are relative to it.
var NowFunc = time.Now

const (
	PostcodeTag       = "postcode"
	UKPhoneTag        = "ukphone"
	MinWordsTag       = "minwords"
	MaxWordsTag       = "maxwords"
	CurrencyTag       = "currency"
	CurrencyMinTag    = "currencymin"
	CurrencyMaxTag    = "currencymax"
	PastDateTag       = "pastdate"
	MinAgeTag         = "minage"
	PastMonthYearTag  = "pastmonthyear"
	DateRangeOrderTag = "daterangeorder"
	MinSpanTag        = "minspan"
	MaxSpanTag        = "maxspan"
	StartAfterTag     = "startafter"
	BudgetRowsTag     = "budgetrows"
	BudgetTotalMinTag = "budgettotalmin"
	BudgetTotalMaxTag = "budgettotalmax"
)

var postcodeRegex = regexp.MustCompile(`(?i)^(GIR ?0AA|[A-PR-UWYZ]([0-9]{1,2}|([A-HK-Y][0-9]([0-9]|[ABEHMNPRV-Y])?)|[0-9][A-HJKPS-UW]) ?[0-9][ABD-HJLNP-UW-Z]{2})$`)

var (
	validations = map[string]validator.Func{
		PostcodeTag:       postcodeValidation,
		UKPhoneTag:        ukPhoneValidation,
		MinWordsTag:       minWordsValidation,
		MaxWordsTag:       maxWordsValidation,
		CurrencyTag:       currencyValidation,
		CurrencyMinTag:    currencyMinValidation,
		CurrencyMaxTag:    currencyMaxValidation,
		PastDateTag:       pastDateValidation,
		MinAgeTag:         minAgeValidation,
		PastMonthYearTag:  pastMonthYearValidation,
		DateRangeOrderTag: dateRangeOrderValidation,
		MinSpanTag:        minSpanValidation,
		MaxSpanTag:        maxSpanValidation,
		StartAfterTag:     startAfterValidation,
		BudgetRowsTag:     budgetRowsValidation,
		BudgetTotalMinTag: budgetTotalMinValidation,
		BudgetTotalMaxTag: budgetTotalMaxValidation,
	}

	texts = map[string]core.Copy{
		PostcodeTag:       {En: "Enter a real postcode", Cy: "Rhowch god post go iawn"},
		UKPhoneTag:        {En: "Enter a real UK telephone number", Cy: "Rhowch rif ffôn go iawn yn y DU"},
		MinWordsTag:       {En: "Answer must be at least {0} words", Cy: "Rhaid i'r ateb fod o leiaf {0} gair"},
		MaxWordsTag:       {En: "Answer must be no more than {0} words", Cy: "Rhaid i'r ateb beidio â bod yn fwy na {0} gair"},
		CurrencyTag:       {En: "Enter an amount of money", Cy: "Rhowch swm o arian"},
		CurrencyMinTag:    {En: "Amount must be at least £{0}", Cy: "Rhaid i'r swm fod o leiaf £{0}"},
		CurrencyMaxTag:    {En: "Amount must be £{0} or less", Cy: "Rhaid i'r swm fod yn £{0} neu lai"},
		PastDateTag:       {En: "Date must be in the past", Cy: "Rhaid i'r dyddiad fod yn y gorffennol"},
		MinAgeTag:         {En: "Must be at least {0} years old", Cy: "Rhaid bod yn o leiaf {0} oed"},
		PastMonthYearTag:  {En: "Date must not be in the future", Cy: "Ni ddylai'r dyddiad fod yn y dyfodol"},
		DateRangeOrderTag: {En: "End date must be after start date", Cy: "Rhaid i'r dyddiad gorffen fod ar ôl y dyddiad dechrau"},
		MinSpanTag:        {En: "Project must last at least {0} days", Cy: "Rhaid i'r prosiect bara o leiaf {0} diwrnod"},
		MaxSpanTag:        {En: "Project must last no more than {0} days", Cy: "Rhaid i'r prosiect beidio â para mwy na {0} diwrnod"},
		StartAfterTag:     {En: "Start date must be at least {0} days from today", Cy: "Rhaid i'r dyddiad dechrau fod o leiaf {0} diwrnod o heddiw"},
		BudgetRowsTag:     {En: "Enter an item and a cost for every row", Cy: "Rhowch eitem a chost ar gyfer pob rhes"},
		BudgetTotalMinTag: {En: "Total costs must be at least £{0}", Cy: "Rhaid i gyfanswm y costau fod o leiaf £{0}"},
		BudgetTotalMaxTag: {En: "Total costs must be £{0} or less", Cy: "Rhaid i gyfanswm y costau fod yn £{0} neu lai"},

		// coercion failures
		codeType:      {En: "Enter a valid answer", Cy: "Rhowch ateb dilys"},
		codeDate:      {En: "Enter a real date", Cy: "Rhowch ddyddiad go iawn"},
		codeDayMonth:  {En: "Enter a real day and month", Cy: "Rhowch ddiwrnod a mis go iawn"},
		codeMonthYear: {En: "Enter a real month and year", Cy: "Rhowch fis a blwyddyn go iawn"},
		codeDateRange: {En: "Enter real start and end dates", Cy: "Rhowch ddyddiadau dechrau a gorffen go iawn"},
	}

	// texts of the parts of an address, keyed by json name
	addressTexts = map[string]core.Copy{
		"line1":    {En: "Enter a building and street", Cy: "Rhowch adeilad a stryd"},
		"townCity": {En: "Enter a town or city", Cy: "Rhowch dref neu ddinas"},
		"postcode": {En: "Enter a real postcode", Cy: "Rhowch god post go iawn"},
	}

	genericText = core.Copy{En: "There is a problem with this answer", Cy: "Mae problem gyda'r ateb hwn"}
)

// InitValidators registers the rules of form fields and their English and Welsh texts.
// core.InitValidators must have been called first.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) {
	for tag, fn := range validations {
		_ = validate.RegisterValidation(tag, fn)
	}
	for tag, text := range texts {
		core.RegisterLocalisedTranslation(validate, uni, tag, text)
	}
	for _, l := range core.Locales {
		trans := core.GetTranslator(uni, l)
		for sub, text := range addressTexts {
			_ = trans.Add(addressKey(sub), text.In(l), false)
		}
	}
}

func addressKey(sub string) string { return "address." + sub }

// Message returns the text of an error code, with `{0}` replaced by param.
func Message(trans ut.Translator, code, param string) (string, bool) {
	s, err := trans.T(code, param)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// GenericMessage is shown when no text exists for an error code.
func GenericMessage(l core.Locale) string { return genericText.In(l) }

// Custom Validators

// IsValidPostcode reports whether s looks like a UK postcode.
func IsValidPostcode(s string) bool {
	return postcodeRegex.MatchString(strings.TrimSpace(s))
}

func postcodeValidation(fl validator.FieldLevel) bool {
	return IsValidPostcode(fl.Field().String())
}

func ukPhoneValidation(fl validator.FieldLevel) bool {
	num, err := phonenumbers.Parse(fl.Field().String(), "GB")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// WordCount counts whitespace delimited runs of characters.
func WordCount(s string) int { return len(strings.Fields(s)) }

func minWordsValidation(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return WordCount(fl.Field().String()) >= n
}

func maxWordsValidation(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return WordCount(fl.Field().String()) <= n
}

func currencyValidation(fl validator.FieldLevel) bool {
	amount, ok := ParseAmount(fl.Field().String())
	return ok && !amount.IsNegative()
}

func currencyMinValidation(fl validator.FieldLevel) bool {
	amount, ok := ParseAmount(fl.Field().String())
	limit, err := decimal.NewFromString(fl.Param())
	return ok && err == nil && amount.GreaterThanOrEqual(limit)
}

func currencyMaxValidation(fl validator.FieldLevel) bool {
	amount, ok := ParseAmount(fl.Field().String())
	limit, err := decimal.NewFromString(fl.Param())
	return ok && err == nil && amount.LessThanOrEqual(limit)
}

func today() time.Time {
	now := NowFunc().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func fieldTime(fl validator.FieldLevel) (time.Time, bool) {
	t, ok := fl.Field().Interface().(time.Time)
	return t, ok && !t.IsZero()
}

func pastDateValidation(fl validator.FieldLevel) bool {
	t, ok := fieldTime(fl)
	return !ok || t.Before(today())
}

func minAgeValidation(fl validator.FieldLevel) bool {
	years, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	t, ok := fieldTime(fl)
	return !ok || !t.After(today().AddDate(-years, 0, 0))
}

// pastMonthYearValidation accepts the current month.
func pastMonthYearValidation(fl validator.FieldLevel) bool {
	t, ok := fieldTime(fl)
	return !ok || !t.After(today())
}

func fieldSpan(fl validator.FieldLevel) (TimeSpan, bool) {
	ts, ok := fl.Field().Interface().(TimeSpan)
	return ts, ok && !ts.Start().IsZero() && !ts.End().IsZero()
}

// SpanDays returns the number of days from start to end.
func SpanDays(ts TimeSpan) int {
	return int(ts.End().Sub(ts.Start()).Hours() / 24)
}

func dateRangeOrderValidation(fl validator.FieldLevel) bool {
	ts, ok := fieldSpan(fl)
	return !ok || !ts.End().Before(ts.Start())
}

func minSpanValidation(fl validator.FieldLevel) bool {
	days, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	ts, ok := fieldSpan(fl)
	return !ok || SpanDays(ts) >= days
}

func maxSpanValidation(fl validator.FieldLevel) bool {
	days, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	ts, ok := fieldSpan(fl)
	return !ok || SpanDays(ts) <= days
}

func startAfterValidation(fl validator.FieldLevel) bool {
	days, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	ts, ok := fieldSpan(fl)
	return !ok || !ts.Start().Before(today().AddDate(0, 0, days))
}

func fieldBudget(fl validator.FieldLevel) []BudgetItem {
	items, _ := fl.Field().Interface().([]BudgetItem)
	return items
}

func budgetRowsValidation(fl validator.FieldLevel) bool {
	for _, it := range fieldBudget(fl) {
		amount, ok := it.Amount()
		if it.Item == "" || !ok || !amount.IsPositive() {
			return false
		}
	}
	return true
}

func budgetTotalMinValidation(fl validator.FieldLevel) bool {
	limit, err := decimal.NewFromString(fl.Param())
	return err == nil && BudgetTotal(fieldBudget(fl)).GreaterThanOrEqual(limit)
}

func budgetTotalMaxValidation(fl validator.FieldLevel) bool {
	limit, err := decimal.NewFromString(fl.Param())
	return err == nil && BudgetTotal(fieldBudget(fl)).LessThanOrEqual(limit)
}

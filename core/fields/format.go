package fields

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/locales"
	"github.com/go-playground/locales/cy"
	"github.com/go-playground/locales/en"
	"github.com/shopspring/decimal"

	"github.com/biglotteryfund/funding/core"
)

var calendars = map[core.Locale]locales.Translator{
	core.LocaleEn: en.New(),
	core.LocaleCy: cy.New(),
}

var totalText = core.Copy{En: "Total", Cy: "Cyfanswm"}

// FormatOptions holds what formatting needs besides the value.
type FormatOptions struct {
	Locale  core.Locale
	Options []Option // choices of radio and checkbox fields
}

// Format renders a stored field value for people to read, in summaries and emails.
func Format(t Type, value interface{}, opts FormatOptions) string {
	if IsEmpty(value) {
		return ""
	}

	switch t {
	case TypeRadio:
		return optionLabel(toString(value), opts)

	case TypeCheckbox:
		vals := toStringSlice(value)
		labels := make([]string, 0, len(vals))
		for _, v := range vals {
			labels = append(labels, optionLabel(v, opts))
		}
		return strings.Join(labels, ", ")

	case TypeDate, TypeDayMonth, TypeMonthYear:
		typed, err := Coerce(t, value)
		if err != nil {
			break
		}
		tm := typed.(time.Time)
		switch t {
		case TypeDayMonth:
			return FormatDayMonth(tm, opts.Locale)
		case TypeMonthYear:
			return FormatMonthYear(tm, opts.Locale)
		}
		return FormatDate(tm, opts.Locale)

	case TypeDateRange:
		typed, err := Coerce(t, value)
		if err != nil {
			break
		}
		ts := typed.(TimeSpan)
		return FormatDate(ts.Start(), opts.Locale) + " - " + FormatDate(ts.End(), opts.Locale)

	case TypeCurrency:
		return FormatCurrency(value)

	case TypeAddress:
		typed, err := Coerce(t, value)
		if err != nil {
			break
		}
		return strings.Join(typed.(Address).Lines(), ",\n")

	case TypeBudget:
		typed, err := Coerce(t, value)
		if err != nil {
			break
		}
		return FormatBudget(typed.([]BudgetItem), opts.Locale)
	}

	return toString(value)
}

func optionLabel(value string, opts FormatOptions) string {
	for _, o := range opts.Options {
		if o.Value == value {
			return o.Label.In(opts.Locale)
		}
	}
	return value
}

func monthName(m time.Month, l core.Locale) string {
	cal, ok := calendars[l]
	if !ok {
		cal = calendars[core.LocaleEn]
	}
	return cal.MonthWide(m)
}

// FormatDate renders a date as "5 March, 2020".
func FormatDate(t time.Time, l core.Locale) string {
	return fmt.Sprintf("%d %s, %d", t.Day(), monthName(t.Month(), l), t.Year())
}

// FormatDayMonth renders a date as "5 March".
func FormatDayMonth(t time.Time, l core.Locale) string {
	return fmt.Sprintf("%d %s", t.Day(), monthName(t.Month(), l))
}

// FormatMonthYear renders a date as "March 2020".
func FormatMonthYear(t time.Time, l core.Locale) string {
	return fmt.Sprintf("%s %d", monthName(t.Month(), l), t.Year())
}

// FormatCurrency renders an amount in pounds with grouped thousands.
// The fractional part is kept as given: 100.5 is "£100.5".
func FormatCurrency(value interface{}) string {
	var s string
	switch v := value.(type) {
	case decimal.Decimal:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		s = cleanAmount(toString(value))
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "£" + sign + s
	}
	return sign + "£" + humanize.Comma(n) + frac
}

// FormatBudget renders one "item - £cost" line per row followed by the total.
func FormatBudget(items []BudgetItem, l core.Locale) string {
	lines := make([]string, 0, len(items)+1)
	for _, it := range items {
		lines = append(lines, it.Item+" - "+FormatCurrency(it.Cost))
	}
	lines = append(lines, totalText.In(l)+": "+FormatCurrency(BudgetTotal(items)))
	return strings.Join(lines, "\n")
}

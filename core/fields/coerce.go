package fields

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// coercion error codes, translated like validation tags
const (
	codeType      = "type"
	codeDate      = "date"
	codeDayMonth  = "daymonth"
	codeMonthYear = "monthyear"
	codeDateRange = "daterange"
)

var stripPolicy = bluemonday.StrictPolicy()

// CoercionError is returned when a submitted value does not have the shape its type expects.
type CoercionError struct {
	Code string
}

func (e *CoercionError) Error() string {
	return "invalid " + e.Code
}

// Normalise cleans a submitted value before it is stored: strings are trimmed, markup is stripped
// from free text, checkbox values become lists and empty budget rows are stripped.
func Normalise(t Type, raw interface{}) interface{} {
	v := trimAll(raw)
	switch t {
	case TypeText, TypeTextarea:
		if s, ok := v.(string); ok {
			return StripHTML(s)
		}
	case TypeCheckbox:
		vals := toStringSlice(v)
		if vals == nil {
			return nil
		}
		out := make([]interface{}, 0, len(vals))
		for _, s := range vals {
			out = append(out, s)
		}
		return out
	case TypeBudget:
		rows, ok := v.([]interface{})
		if !ok {
			return v
		}
		out := make([]interface{}, 0, len(rows))
		for _, row := range rows {
			if !isEmptyValue(row) {
				out = append(out, row)
			}
		}
		return out
	}
	return v
}

// StripHTML removes every tag from s, keeping the text.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// Coerce converts a submitted value into the Go value its rules are checked against:
// dates become time.Time, date ranges a TimeSpan, addresses an Address and budgets []BudgetItem.
// Empty compound values coerce to their zero value so that `required` catches them.
func Coerce(t Type, raw interface{}) (interface{}, error) {
	switch t {
	case TypeCheckbox:
		return toStringSlice(raw), nil

	case TypeDate:
		if s, ok := raw.(string); ok && s != "" {
			tm, err := time.Parse("2006-01-02", s)
			if err != nil {
				return nil, &CoercionError{Code: codeDate}
			}
			return tm, nil
		}
		var dp DateParts
		if err := weakDecode(raw, &dp); err != nil {
			return nil, &CoercionError{Code: codeDate}
		}
		if dp.IsEmpty() {
			return time.Time{}, nil
		}
		tm, ok := dp.Time()
		if !ok {
			return nil, &CoercionError{Code: codeDate}
		}
		return tm, nil

	case TypeDayMonth:
		var dm DayMonth
		if err := weakDecode(raw, &dm); err != nil {
			return nil, &CoercionError{Code: codeDayMonth}
		}
		if dm.IsEmpty() {
			return time.Time{}, nil
		}
		tm, ok := dm.Time()
		if !ok {
			return nil, &CoercionError{Code: codeDayMonth}
		}
		return tm, nil

	case TypeMonthYear:
		var my MonthYear
		if err := weakDecode(raw, &my); err != nil {
			return nil, &CoercionError{Code: codeMonthYear}
		}
		if my.IsEmpty() {
			return time.Time{}, nil
		}
		tm, ok := my.Time()
		if !ok {
			return nil, &CoercionError{Code: codeMonthYear}
		}
		return tm, nil

	case TypeDateRange:
		var dr DateRange
		if err := weakDecode(raw, &dr); err != nil {
			return nil, &CoercionError{Code: codeDateRange}
		}
		if dr.IsEmpty() {
			return TimeSpan{}, nil
		}
		start, okStart := dr.StartDate.Time()
		end, okEnd := dr.EndDate.Time()
		if !(okStart && okEnd) {
			return nil, &CoercionError{Code: codeDateRange}
		}
		return TimeSpan{start, end}, nil

	case TypeAddress:
		var addr Address
		if err := weakDecode(raw, &addr); err != nil {
			return nil, &CoercionError{Code: codeType}
		}
		addr.Postcode = strings.ToUpper(addr.Postcode)
		return addr, nil

	case TypeBudget:
		var items []BudgetItem
		if err := weakDecode(raw, &items); err != nil {
			return nil, &CoercionError{Code: codeType}
		}
		var out []BudgetItem
		for _, it := range items {
			it.Item = strings.TrimSpace(it.Item)
			it.Cost = strings.TrimSpace(it.Cost)
			if !it.IsEmpty() {
				out = append(out, it)
			}
		}
		return out, nil

	case TypeCurrency:
		return cleanAmount(toString(raw)), nil

	default:
		if _, ok := raw.(map[string]interface{}); ok {
			return nil, &CoercionError{Code: codeType}
		}
		return toString(raw), nil
	}
}

// ParseAmount parses an amount of money such as "£1,250.50".
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := cleanAmount(s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func cleanAmount(s string) string {
	return strings.NewReplacer("£", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
}

func weakDecode(raw, out interface{}) error {
	if raw == nil {
		return nil
	}
	if s, ok := raw.(string); ok && s == "" {
		return nil
	}
	return mapstructure.WeakDecode(raw, out)
}

func toString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		if len(v) > 0 {
			return toString(v[len(v)-1])
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toStringSlice(raw interface{}) []string {
	var out []string
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func trimAll(raw interface{}) interface{} {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		out := make([]interface{}, 0, len(v))
		for _, s := range v {
			out = append(out, strings.TrimSpace(s))
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, trimAll(item))
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = trimAll(item)
		}
		return out
	default:
		return v
	}
}

func isEmptyValue(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		for _, item := range v {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, item := range v {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsEmpty reports whether a submitted value holds nothing but blanks.
func IsEmpty(raw interface{}) bool { return isEmptyValue(raw) }

// HasValue reports whether a submitted value is, or for multiple choices includes, value.
func HasValue(raw interface{}, value string) bool {
	for _, s := range toStringSlice(raw) {
		if s == value {
			return true
		}
	}
	return false
}

// Package fields holds the typed values submitted through application forms:
// how they are normalised and coerced, the validation rules they extend
// go-playground/validator with, and how they are formatted for people to read.
package fields

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/biglotteryfund/funding/core"
)

// Type tags the shape of a field value.
type Type string

const (
	TypeText      Type = "text"
	TypeTextarea  Type = "textarea"
	TypeEmail     Type = "email"
	TypeTel       Type = "tel"
	TypeNumber    Type = "number"
	TypeRadio     Type = "radio"
	TypeCheckbox  Type = "checkbox"
	TypeDate      Type = "date"
	TypeDayMonth  Type = "day-month"
	TypeMonthYear Type = "month-year"
	TypeDateRange Type = "date-range"
	TypeCurrency  Type = "currency"
	TypeAddress   Type = "address"
	TypeBudget    Type = "budget"
)

// Option is one of the choices of a radio or checkbox field.
type Option struct {
	Value string    `json:"value"`
	Label core.Copy `json:"label"`
	// Controls lists the conditional fields revealed when this option is chosen.
	Controls []string `json:"controls,omitempty"`
}

// DateParts is how a date is submitted: three separate inputs.
type DateParts struct {
	Day   int `mapstructure:"day" json:"day"`
	Month int `mapstructure:"month" json:"month"`
	Year  int `mapstructure:"year" json:"year"`
}

func (dp DateParts) IsEmpty() bool { return dp.Day == 0 && dp.Month == 0 && dp.Year == 0 }

// Time returns the date represented by the parts, false if it is not a real date.
func (dp DateParts) Time() (time.Time, bool) {
	if dp.Year < 1000 || dp.Year > 9999 || dp.Month < 1 || dp.Month > 12 || dp.Day < 1 {
		return time.Time{}, false
	}
	t := time.Date(dp.Year, time.Month(dp.Month), dp.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != dp.Day || int(t.Month()) != dp.Month {
		return time.Time{}, false
	}
	return t, true
}

// DayMonth is a recurring date without a year, such as a financial year end.
type DayMonth struct {
	Day   int `mapstructure:"day" json:"day"`
	Month int `mapstructure:"month" json:"month"`
}

func (dm DayMonth) IsEmpty() bool { return dm.Day == 0 && dm.Month == 0 }

// Time places the day and month in a leap year so that 29 February is accepted.
func (dm DayMonth) Time() (time.Time, bool) {
	return DateParts{Day: dm.Day, Month: dm.Month, Year: 2000}.Time()
}

type MonthYear struct {
	Month int `mapstructure:"month" json:"month"`
	Year  int `mapstructure:"year" json:"year"`
}

func (my MonthYear) IsEmpty() bool { return my.Month == 0 && my.Year == 0 }

func (my MonthYear) Time() (time.Time, bool) {
	return DateParts{Day: 1, Month: my.Month, Year: my.Year}.Time()
}

type DateRange struct {
	StartDate DateParts `mapstructure:"startDate" json:"startDate"`
	EndDate   DateParts `mapstructure:"endDate" json:"endDate"`
}

func (dr DateRange) IsEmpty() bool { return dr.StartDate.IsEmpty() && dr.EndDate.IsEmpty() }

// TimeSpan is the coerced form of a DateRange: start and end dates.
type TimeSpan [2]time.Time

func (ts TimeSpan) Start() time.Time { return ts[0] }
func (ts TimeSpan) End() time.Time   { return ts[1] }

// Address is a UK postal address.
type Address struct {
	Line1    string `mapstructure:"line1" json:"line1" validate:"required,max=255"`
	Line2    string `mapstructure:"line2" json:"line2,omitempty" validate:"max=255"`
	TownCity string `mapstructure:"townCity" json:"townCity" validate:"required,max=40"`
	County   string `mapstructure:"county" json:"county,omitempty" validate:"max=80"`
	Postcode string `mapstructure:"postcode" json:"postcode" validate:"required,postcode"`
}

func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.Line2 == "" && a.TownCity == "" && a.County == "" && a.Postcode == ""
}

// Lines returns the non-empty lines of the address, in postal order.
func (a Address) Lines() []string {
	lines := make([]string, 0, 5)
	for _, l := range []string{a.Line1, a.Line2, a.TownCity, a.County, a.Postcode} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// BudgetItem is one row of a project budget.
type BudgetItem struct {
	Item string `mapstructure:"item" json:"item"`
	Cost string `mapstructure:"cost" json:"cost"`
}

func (bi BudgetItem) IsEmpty() bool { return bi.Item == "" && bi.Cost == "" }

// Amount parses the cost, false if it is not a number.
func (bi BudgetItem) Amount() (decimal.Decimal, bool) {
	return ParseAmount(bi.Cost)
}

// BudgetTotal sums the costs of the rows that have a numeric cost.
func BudgetTotal(items []BudgetItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if amount, ok := it.Amount(); ok {
			total = total.Add(amount)
		}
	}
	return total
}

package forms

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("community ", n))
}

func address() map[string]interface{} {
	return map[string]interface{}{"line1": "1 Plough Place", "townCity": "London", "postcode": "EC4A 1DE"}
}

func validAwardsForAllData() form.Data {
	return form.Data{
		"projectName": "Green Spaces",
		"projectDateRange": map[string]interface{}{
			"startDate": map[string]interface{}{"day": "1", "month": "6", "year": "2026"},
			"endDate":   map[string]interface{}{"day": "1", "month": "12", "year": "2026"},
		},
		"projectCountry":                      "england",
		"projectPostcode":                     "B15 1TR",
		"yourIdeaProject":                     words(60),
		"yourIdeaPriorities":                  words(60),
		"yourIdeaCommunity":                   words(60),
		"beneficiariesGroupsCheck":            "no",
		"organisationLegalName":               "Friends of the Park",
		"organisationHasDifferentTradingName": "no",
		"organisationStartDate":               map[string]interface{}{"month": "3", "year": "2010"},
		"organisationAddress":                 address(),
		"organisationType":                    "unregistered-vco",
		"accountingYearDate":                  map[string]interface{}{"day": "31", "month": "3"},
		"totalIncomeYear":                     "25,000",
		"mainContactName":                     "Jane Doe",
		"mainContactDateOfBirth":              map[string]interface{}{"day": "5", "month": "11", "year": "1980"},
		"mainContactAddress":                  address(),
		"mainContactEmail":                    "jane@test.test",
		"mainContactPhone":                    "020 7211 1888",
		"projectBudget": []interface{}{
			map[string]interface{}{"item": "Benches", "cost": "1,500"},
			map[string]interface{}{"item": "Plants", "cost": "800"},
		},
		"projectTotalCosts":   "2,300",
		"termsAgreement":      []interface{}{"terms", "data", "accurate", "authorised"},
		"termsPersonName":     "Jane Doe",
		"termsPersonPosition": "Chair",
	}
}

func fixNow(t *testing.T) {
	t.Helper()
	fields.NowFunc = func() time.Time { return time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { fields.NowFunc = time.Now })
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{AwardsForAllID, StandardEnquiryID}, reg.IDs())

	f, err := reg.Get(AwardsForAllID)
	require.NoError(t, err)

	trading, ok := f.Field("organisationTradingName")
	require.True(t, ok)
	assert.True(t, trading.IsConditional)

	trigger, ok := f.Field("organisationHasDifferentTradingName")
	require.True(t, ok)
	assert.Equal(t, []string{"organisationTradingName"}, trigger.Options[0].Controls)
	assert.Empty(t, trigger.Options[1].Controls)
}

func TestAwardsForAllSequencing(t *testing.T) {
	f, err := NewAwardsForAll()
	require.NoError(t, err)

	from := form.StepRef{Section: "beneficiaries", Number: 1}
	tests := []struct {
		name string
		data form.Data
		want form.StepRef
	}{
		{
			name: "no specific groups outside wales",
			data: form.Data{"beneficiariesGroupsCheck": "no", "projectCountry": "england"},
			want: form.StepRef{Section: "organisation", Number: 1},
		},
		{
			name: "specific groups",
			data: form.Data{"beneficiariesGroupsCheck": "yes", "projectCountry": "england"},
			want: form.StepRef{Section: "beneficiaries", Number: 2},
		},
		{
			name: "welsh language in wales",
			data: form.Data{"beneficiariesGroupsCheck": "no", "projectCountry": "wales"},
			want: form.StepRef{Section: "beneficiaries", Number: 3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := f.Next(from, tc.data)
			require.True(t, ok)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestAwardsForAllValidation(t *testing.T) {
	fixNow(t)
	f, err := NewAwardsForAll()
	require.NoError(t, err)
	v := form.NewValidator()

	t.Run("complete application", func(t *testing.T) {
		data := validAwardsForAllData()
		res := v.ValidateForm(f, data, core.LocaleEn)
		assert.True(t, res.IsValid(), "%+v", res.Errors)
		assert.True(t, v.Progress(f, data).IsComplete)
	})

	t.Run("conditional step applies", func(t *testing.T) {
		data := validAwardsForAllData()
		data["beneficiariesGroupsCheck"] = "yes"
		res := v.ValidateForm(f, data, core.LocaleEn)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "beneficiariesGroups", res.Errors[0].Field)
	})

	t.Run("trading name only when used", func(t *testing.T) {
		data := validAwardsForAllData()
		data["organisationHasDifferentTradingName"] = "yes"
		res := v.ValidateForm(f, data, core.LocaleEn)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "organisationTradingName", res.Errors[0].Field)

		data["organisationTradingName"] = "Park Friends"
		assert.True(t, v.ValidateForm(f, data, core.LocaleEn).IsValid())
	})

	t.Run("budget over the limit", func(t *testing.T) {
		data := validAwardsForAllData()
		data["projectBudget"] = []interface{}{
			map[string]interface{}{"item": "Minibus", "cost": "9,000"},
			map[string]interface{}{"item": "", "cost": ""},
			map[string]interface{}{"item": "Fuel", "cost": "1,500"},
		}
		res := v.ValidateForm(f, data, core.LocaleEn)
		e, ok := res.ErrorFor("projectBudget")
		require.True(t, ok)
		assert.Equal(t, fields.BudgetTotalMaxTag, e.Code)
		assert.Len(t, res.Values["projectBudget"], 2)
	})

	t.Run("project starts too soon", func(t *testing.T) {
		data := validAwardsForAllData()
		data["projectDateRange"] = map[string]interface{}{
			"startDate": map[string]interface{}{"day": "1", "month": "2", "year": "2026"},
			"endDate":   map[string]interface{}{"day": "1", "month": "6", "year": "2026"},
		}
		res := v.ValidateForm(f, data, core.LocaleCy)
		e, ok := res.ErrorFor("projectDateRange")
		require.True(t, ok)
		assert.Equal(t, fields.StartAfterTag, e.Code)
		assert.Equal(t, "Rhowch ddyddiad dechrau a gorffen y prosiect", e.Error)
	})

	t.Run("main contact too young", func(t *testing.T) {
		data := validAwardsForAllData()
		data["mainContactDateOfBirth"] = map[string]interface{}{"day": "1", "month": "1", "year": "2015"}
		res := v.ValidateForm(f, data, core.LocaleEn)
		e, ok := res.ErrorFor("mainContactDateOfBirth")
		require.True(t, ok)
		assert.Equal(t, "Main contact must be at least 16 years old", e.Error)
	})

	t.Run("section progress", func(t *testing.T) {
		data := validAwardsForAllData()
		delete(data, "termsPersonName")
		delete(data, "projectBudget")
		delete(data, "projectTotalCosts")
		p := v.Progress(f, data)
		assert.False(t, p.IsComplete)
		assert.Equal(t, 4, p.Completed)

		statuses := make(map[string]form.SectionStatus)
		for _, s := range p.Sections {
			statuses[s.Slug] = s.Status
		}
		assert.Equal(t, form.StatusEmpty, statuses["budget"])
		assert.Equal(t, form.StatusIncomplete, statuses["terms"])
	})
}

func TestStandardEnquiryValidation(t *testing.T) {
	f, err := NewStandardEnquiry()
	require.NoError(t, err)
	v := form.NewValidator()

	step, err := f.Step(form.StepRef{Section: "your-project", Number: 2})
	require.NoError(t, err)

	res := v.ValidateStep(step, form.Data{
		"projectName":          "Youth Hub",
		"yourIdeaProject":      words(80),
		"projectCosts":         "£8,000",
		"projectDurationYears": "3",
	}, core.LocaleEn)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "projectCosts", res.Errors[0].Field)
	assert.Equal(t, "For £10,000 or less apply for National Lottery Awards for All", res.Errors[0].Error)
}

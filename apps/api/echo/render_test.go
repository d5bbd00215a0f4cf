package echoapi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

func renderStep(t *testing.T, r *Renderer, l core.Locale, errs []core.FieldError, fs ...form.Field) string {
	t.Helper()
	var buf bytes.Buffer
	err := r.Render(&buf, "step", Page{
		Title:  "Step",
		Locale: l,
		Data: stepPage{
			Ref:     form.StepRef{Section: "your-project", Number: 2},
			Step:    form.Step{Fieldsets: []form.Fieldset{{Legend: core.Copy{En: "Details", Cy: "Manylion"}, Fields: fs}}},
			Errors:  errs,
			BaseURL: "/apply/test-form/123",
		},
	}, nil)
	require.NoError(t, err)
	return buf.String()
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	t.Run("compiles every page", func(t *testing.T) {
		for _, name := range []string{"dashboard", "error", "home", "materials", "step", "submitted", "summary"} {
			assert.Contains(t, r.pages, name)
		}
		assert.NotContains(t, r.pages, "_field")
	})

	t.Run("unknown page", func(t *testing.T) {
		err := r.Render(&bytes.Buffer{}, "nope", Page{}, nil)
		assert.EqualError(t, err, `page template "nope" not found`)
	})

	t.Run("step address and legend", func(t *testing.T) {
		out := renderStep(t, r, core.LocaleCy, nil)
		assert.Contains(t, out, `action="/apply/test-form/123/your-project/2"`)
		assert.Contains(t, out, "<legend>Manylion</legend>")
		assert.Contains(t, out, `lang="cy"`)
	})

	t.Run("checked choices", func(t *testing.T) {
		out := renderStep(t, r, core.LocaleEn, nil, form.Field{
			Name:  "beneficiaries",
			Label: core.Copy{En: "Who benefits"},
			Type:  fields.TypeCheckbox,
			Options: []fields.Option{
				{Value: "young", Label: core.Copy{En: "Young people"}},
				{Value: "older", Label: core.Copy{En: "Older people"}},
			},
			Value: []string{"older"},
		})
		assert.Contains(t, out, `value="young"> Young people`)
		assert.Contains(t, out, `value="older" checked> Older people`)
		assert.Contains(t, out, "<legend>Who benefits</legend>")
	})

	t.Run("conditional field and its error", func(t *testing.T) {
		errs := []core.FieldError{{Field: "partnerName", Error: "Enter the name of your partner"}}
		out := renderStep(t, r, core.LocaleEn, errs, form.Field{
			Name:          "partnerName",
			Label:         core.Copy{En: "Partner name"},
			Type:          fields.TypeText,
			ConditionalOn: &form.ConditionalOn{Name: "hasPartner", Value: "yes"},
		})
		assert.Contains(t, out, `data-conditional-on="hasPartner" data-conditional-value="yes"`)
		assert.Contains(t, out, `href="#field-partnerName"`)
		assert.Contains(t, out, `<p class="form-field__error">Enter the name of your partner</p>`)
		assert.Contains(t, out, "There is a problem")
	})

	t.Run("date range parts", func(t *testing.T) {
		out := renderStep(t, r, core.LocaleEn, nil, form.Field{
			Name:  "projectDateRange",
			Label: core.Copy{En: "When"},
			Type:  fields.TypeDateRange,
			Value: map[string]interface{}{"startDate": map[string]interface{}{"day": 1, "month": 6, "year": 2021}},
		})
		assert.Contains(t, out, `name="projectDateRange[startDate][day]" value="1"`)
		assert.Contains(t, out, `name="projectDateRange[startDate][year]" value="2021"`)
		assert.Contains(t, out, `name="projectDateRange[endDate][month]" value=""`)
	})

	t.Run("budget rows and total", func(t *testing.T) {
		out := renderStep(t, r, core.LocaleEn, nil, form.Field{
			Name:  "projectBudget",
			Label: core.Copy{En: "Budget"},
			Type:  fields.TypeBudget,
			Value: []fields.BudgetItem{{Item: "Chairs", Cost: "1000"}, {Item: "Paint", Cost: "250.5"}},
		})
		assert.Contains(t, out, `name="projectBudget[0][item]" value="Chairs"`)
		assert.Contains(t, out, `name="projectBudget[1][cost]" value="250.5"`)
		assert.Contains(t, out, `name="projectBudget[2][item]" value=""`)
		assert.Contains(t, out, "£1,250.5")
	})

	t.Run("escapes answers", func(t *testing.T) {
		out := renderStep(t, r, core.LocaleEn, nil, form.Field{
			Name:  "projectName",
			Label: core.Copy{En: "Project name"},
			Type:  fields.TypeText,
			Value: `"><script>alert(1)</script>`,
		})
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	})
}

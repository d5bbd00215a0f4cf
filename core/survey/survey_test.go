package survey_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/survey"
	inmemdb "github.com/biglotteryfund/funding/storage/database/inmem"
)

func TestPercentagesFor(t *testing.T) {
	tests := []struct {
		yes, no int
		want    float64
	}{
		{yes: 500, no: 50, want: 90.9},
		{yes: 1, no: 2, want: 33.3},
		{yes: 2, no: 1, want: 66.7},
		{yes: 10, no: 0, want: 100},
		{yes: 0, no: 0, want: 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, survey.PercentagesFor(tc.yes, tc.no), "%d/%d", tc.yes, tc.no)
	}
}

func TestSummarise(t *testing.T) {
	responses := []survey.Response{
		{Choice: survey.ChoiceYes, Path: "/funding"},
		{Choice: survey.ChoiceNo, Path: "/apply", Message: "Too long"},
		{Choice: survey.ChoiceYes, Path: "/apply"},
		{Choice: survey.ChoiceYes, Path: "/about"},
		{Choice: survey.ChoiceNo, Path: "/apply"},
	}
	assert.Equal(t, []survey.PathSummary{
		{Path: "/apply", Yes: 1, No: 2, Total: 3, Percentage: 33.3, Messages: []string{"Too long"}},
		{Path: "/about", Yes: 1, Total: 1, Percentage: 100},
		{Path: "/funding", Yes: 1, Total: 1, Percentage: 100},
	}, survey.Summarise(responses))

	assert.Empty(t, survey.Summarise(nil))
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := survey.NewService(inmemdb.NewSurveyRepository(inmemdb.Open()), form.NewValidator())

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.Submit(ctx, form.Data{"choice": "maybe"}, core.LocaleEn)
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		fm := verr.FieldMap()
		assert.Contains(t, fm, "choice")
		assert.Contains(t, fm, "path")
	})

	r, err := svc.Submit(ctx, form.Data{"choice": "no", "path": "/apply", "message": " <p>Could not find the form</p> "}, core.LocaleEn)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Could not find the form", r.Message)

	_, err = svc.Submit(ctx, form.Data{"choice": "yes", "path": "/apply"}, core.LocaleEn)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, form.Data{"choice": "yes", "path": "/funding"}, core.LocaleEn)
	require.NoError(t, err)

	responses, err := svc.Query(ctx, survey.QueryFilter{Path: "/apply"})
	require.NoError(t, err)
	assert.Len(t, responses, 2)

	summary, err := svc.Summary(ctx, survey.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "/apply", summary[0].Path)
	assert.Equal(t, 50.0, summary[0].Percentage)

	summary, err = svc.Summary(ctx, survey.QueryFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, summary)
}

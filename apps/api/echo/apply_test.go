package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
)

func (env *testEnv) newApplication(t *testing.T, l core.Locale) application.Application {
	t.Helper()
	app, err := env.apps.Create(context.Background(), env.applicant.ID, testFormID, l)
	require.NoError(t, err)
	return app
}

func TestApplyAuthentication(t *testing.T) {
	env := setup(t)

	t.Run("pages need the token cookie", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodGet, "/apply", "", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please log in")
	})

	t.Run("header token is not enough", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodGet, "/apply", env.token(t, env.applicant)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDashboard(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.applicant)

	rec := env.serve(newPageRequest(http.MethodGet, "/apply", token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You do not have any applications yet.")

	app := env.newApplication(t, core.LocaleEn)
	rec = env.serve(newPageRequest(http.MethodGet, "/apply", token, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/apply/`+testFormID+`/`+app.ID+`"`)
	assert.Contains(t, rec.Body.String(), "Test form")

	t.Run("welsh", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodGet, "/welsh/apply", token, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Eich ceisiadau")
		assert.Contains(t, rec.Body.String(), `href="/welsh/apply/`+testFormID+`/`+app.ID+`"`)
	})

	t.Run("JSON", func(t *testing.T) {
		req := newPageRequest(http.MethodGet, "/apply", token, nil)
		req.Header.Set("Accept", "application/json")
		rec := env.serve(req)
		require.Equal(t, http.StatusOK, rec.Code)
		var apps []application.Application
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
		require.Len(t, apps, 1)
		assert.Equal(t, app.ID, apps[0].ID)
	})
}

func TestCreateApplication(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.applicant)

	tests := []struct {
		name         string
		path         string
		wantCode     int
		wantLocation string
		wantLocale   core.Locale
	}{
		{name: "english", path: "/apply/" + testFormID, wantCode: http.StatusSeeOther, wantLocation: "/apply/" + testFormID + "/%s/your-project/1", wantLocale: core.LocaleEn},
		{name: "welsh", path: "/welsh/apply/" + testFormID, wantCode: http.StatusSeeOther, wantLocation: "/welsh/apply/" + testFormID + "/%s/your-project/1", wantLocale: core.LocaleCy},
		{name: "unknown form", path: "/apply/unknown", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.serve(newPageRequest(http.MethodPost, tt.path, token, url.Values{}))
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantLocation == "" {
				return
			}

			apps, err := env.apps.ListForUser(context.Background(), env.applicant.ID)
			require.NoError(t, err)
			var created application.Application
			for _, app := range apps {
				if app.Locale == tt.wantLocale {
					created = app
				}
			}
			require.NotEmpty(t, created.ID)
			assert.Equal(t, fmt.Sprintf(tt.wantLocation, created.ID), rec.Header().Get("Location"))
		})
	}
}

func TestApplicationSteps(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.applicant)
	app := env.newApplication(t, core.LocaleEn)
	base := "/apply/" + testFormID + "/" + app.ID

	t.Run("renders the step", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodGet, base+"/your-project/1", token, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<h1>Project details</h1>")
		assert.Contains(t, body, `name="projectName"`)
		assert.Contains(t, body, `action="`+base+`/your-project/1"`)
	})

	t.Run("unknown step", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodGet, base+"/your-project/9", token, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.serve(newPageRequest(http.MethodGet, base+"/your-project/1abc", token, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid answers are kept and shown again", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/your-project/1", token, url.Values{
			"projectName": {"Green Spaces"},
		}))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "There is a problem")
		assert.Contains(t, body, `href="#field-hasPartner"`)
		assert.Contains(t, body, `value="Green Spaces"`)

		saved, err := env.apps.Get(context.Background(), app.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green Spaces", saved.Data["projectName"])
	})

	t.Run("skips steps that do not apply", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/your-project/1", token, url.Values{
			"projectName": {"Green Spaces"},
			"hasPartner":  {"no"},
		}))
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, base+"/contact/1", rec.Header().Get("Location"))
	})

	t.Run("goes to the conditional step", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/your-project/1", token, url.Values{
			"projectName": {"Green Spaces"},
			"hasPartner":  {"yes"},
		}))
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, base+"/your-project/2", rec.Header().Get("Location"))
	})

	t.Run("JSON clients get the next step", func(t *testing.T) {
		req := newAuthRequest(http.MethodPost, base+"/your-project/2", "", marshalObj(t, form.Data{"partnerName": "Parks Trust"}))
		req.Header.Set("Accept", "application/json")
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
		rec := env.serve(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp StepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Next)
		assert.Equal(t, form.StepRef{Section: "contact", Number: 1}, *resp.Next)
		assert.Equal(t, "Parks Trust", resp.Application.Data["partnerName"])
	})

	t.Run("last step goes back to the summary", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/contact/1", token, url.Values{
			"contactEmail":             {"jane@test.test"},
			"contactAddress[line1]":    {"1 Plough Place"},
			"contactAddress[townCity]": {"London"},
			"contactAddress[postcode]": {"EC4A 1DE"},
		}))
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, base, rec.Header().Get("Location"))
	})

	t.Run("other applicants cannot see it", func(t *testing.T) {
		other := env.createUser(t, "otherapplicant", "other@test.test", "applicant:")
		rec := env.serve(newPageRequest(http.MethodGet, base+"/your-project/1", env.token(t, other), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSummaryAndSubmit(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.applicant)
	app := env.newApplication(t, core.LocaleEn)
	base := "/apply/" + testFormID + "/" + app.ID

	t.Run("incomplete application cannot be submitted", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/submit", token, url.Values{}))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "There is a problem")
		assert.Contains(t, rec.Body.String(), "Sections completed: 0 / 2")
	})

	ctx := context.Background()
	_, app, err := env.apps.SaveStep(ctx, app, form.StepRef{Section: "your-project", Number: 1},
		form.Data{"projectName": "Green Spaces", "hasPartner": "no"}, core.LocaleEn)
	require.NoError(t, err)
	_, _, err = env.apps.SaveStep(ctx, app, form.StepRef{Section: "contact", Number: 1}, form.Data{
		"contactEmail":   "jane@test.test",
		"contactAddress": map[string]interface{}{"line1": "1 Plough Place", "townCity": "London", "postcode": "EC4A 1DE"},
	}, core.LocaleEn)
	require.NoError(t, err)

	t.Run("summary", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodGet, base, token, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Sections completed: 2 / 2")
		assert.Contains(t, body, "<dt>Project name</dt><dd>Green Spaces</dd>")
		assert.NotContains(t, body, "Partner name")
	})

	t.Run("submit", func(t *testing.T) {
		env.mail.Reset()
		rec := env.serve(newPageRequest(http.MethodPost, base+"/submit", token, url.Values{}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Your application has been submitted")
		assert.Len(t, env.mail.SentMessages(), 1)

		saved, err := env.apps.Get(ctx, app.ID)
		require.NoError(t, err)
		assert.True(t, saved.IsComplete())
	})

	t.Run("submitted applications are read only", func(t *testing.T) {
		rec := env.serve(newPageRequest(http.MethodPost, base+"/your-project/1", token, url.Values{"projectName": {"Changed"}}))
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = env.serve(newPageRequest(http.MethodPost, base+"/submit", token, url.Values{}))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDeleteApplication(t *testing.T) {
	env := setup(t)
	token := env.token(t, env.applicant)
	app := env.newApplication(t, core.LocaleCy)
	base := "/welsh/apply/" + testFormID + "/" + app.ID

	rec := env.serve(newPageRequest(http.MethodPost, base+"/delete", token, url.Values{}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/welsh/apply", rec.Header().Get("Location"))

	_, err := env.apps.Get(context.Background(), app.ID)
	assert.Equal(t, application.ErrNotFound, err)

	rec = env.serve(newPageRequest(http.MethodGet, base, token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

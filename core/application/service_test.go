package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/user"
	emailsvc "github.com/biglotteryfund/funding/services/email"
	inmemdb "github.com/biglotteryfund/funding/storage/database/inmem"
)

type userFinder map[string]user.User

func (f userFinder) GetByID(_ context.Context, id string) (user.User, error) {
	if usr, ok := f[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

type testLogger struct{ errors []string }

func (l *testLogger) Debug(string, ...interface{})       {}
func (l *testLogger) Info(string, ...interface{})        {}
func (l *testLogger) Warn(string, ...interface{})        {}
func (l *testLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }
func (l *testLogger) Fatal(string, ...interface{})       {}

// newTestForm is an application form with an optional second step.
func newTestForm(t *testing.T) *form.Form {
	t.Helper()
	f := form.New("awards-for-all", core.Copy{En: "Awards for All"})

	project, err := f.AddSection("your-project", core.Copy{En: "Your project", Cy: "Eich prosiect"})
	require.NoError(t, err)
	require.NoError(t, project.RegisterStep(&form.Step{
		Title: core.Copy{En: "Project details"},
		Fieldsets: []form.Fieldset{{
			Legend: core.Copy{En: "Project details"},
			Fields: []form.Field{
				{Name: "projectName", Label: core.Copy{En: "Project name", Cy: "Enw'r prosiect"}, Type: fields.TypeText, Rules: "required,max=80"},
				{Name: "projectCosts", Label: core.Copy{En: "Project costs"}, Type: fields.TypeCurrency, Rules: "required,currency"},
				{
					Name:    "hasPartner",
					Label:   core.Copy{En: "Partner?"},
					Type:    fields.TypeRadio,
					Rules:   "required",
					Options: []fields.Option{{Value: "yes", Label: core.Copy{En: "Yes"}}, {Value: "no", Label: core.Copy{En: "No"}}},
				},
			},
		}},
	}))
	require.NoError(t, project.RegisterStep(&form.Step{
		Title: core.Copy{En: "Partner"},
		Fieldsets: []form.Fieldset{{
			Legend: core.Copy{En: "Partner"},
			Fields: []form.Field{{Name: "partnerName", Label: core.Copy{En: "Partner name"}, Type: fields.TypeText, Rules: "required"}},
		}},
		Condition: func(data form.Data) bool { return data["hasPartner"] == "yes" },
	}))
	return f
}

type fixture struct {
	svc    *application.Service
	mail   *emailsvc.ConsoleServiceMock
	logger *testLogger
	users  userFinder
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := form.NewRegistry()
	require.NoError(t, reg.Register(newTestForm(t)))

	conf := core.NewTestConfig()
	fx := &fixture{
		mail:   emailsvc.NewConsoleServiceMock(conf),
		logger: new(testLogger),
		users: userFinder{
			"usr-1": {ID: "usr-1", Name: "Jane Doe", Email: "jane@test.test", IsActive: true},
		},
		now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	db := inmemdb.Open()
	fx.svc = application.NewService(
		inmemdb.NewApplicationRepository(db), reg, form.NewValidator(), fx.users, fx.mail, fx.logger, conf,
	)

	application.NowFunc = func() time.Time { return fx.now }
	t.Cleanup(func() { application.NowFunc = time.Now })
	return fx
}

var ctx = context.Background()

func TestCreate(t *testing.T) {
	fx := newFixture(t)

	app, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleCy)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, fx.now.Add(90*24*time.Hour), app.ExpiresAt)

	got, err := fx.svc.GetForUser(ctx, app.ID, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, core.LocaleCy, got.Locale)

	_, err = fx.svc.GetForUser(ctx, app.ID, "usr-2")
	assert.Equal(t, application.ErrNotFound, err)

	_, err = fx.svc.Create(ctx, "usr-1", "unknown", core.LocaleEn)
	assert.Equal(t, form.ErrFormNotFound, err)
}

func TestSaveStep(t *testing.T) {
	fx := newFixture(t)
	app, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	ref := form.StepRef{Section: "your-project", Number: 1}

	res, app, err := fx.svc.SaveStep(ctx, app, ref, form.Data{
		"projectName":  "  <b>Green</b> Spaces ",
		"projectCosts": "lots",
	}, core.LocaleEn)
	require.NoError(t, err)
	require.False(t, res.IsValid())
	assert.Len(t, res.Errors, 2)
	require.Len(t, res.FieldsetErrors, 1)
	assert.Len(t, res.FieldsetErrors[0], 2)

	// saved even though invalid, and cleaned
	stored, err := fx.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Spaces", stored.Data["projectName"])
	assert.Equal(t, "lots", stored.Data["projectCosts"])

	res, app, err = fx.svc.SaveStep(ctx, app, ref, form.Data{
		"projectName":  "Green Spaces",
		"projectCosts": "£1,200",
		"hasPartner":   "no",
	}, core.LocaleEn)
	require.NoError(t, err)
	assert.True(t, res.IsValid())

	p, err := fx.svc.Progress(app)
	require.NoError(t, err)
	assert.True(t, p.IsComplete)

	_, _, err = fx.svc.SaveStep(ctx, app, form.StepRef{Section: "your-project", Number: 3}, form.Data{}, core.LocaleEn)
	assert.Equal(t, form.ErrStepNotFound, err)
}

func TestSubmit(t *testing.T) {
	fx := newFixture(t)
	app, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	ref := form.StepRef{Section: "your-project", Number: 1}

	_, app, err = fx.svc.SaveStep(ctx, app, ref, form.Data{"projectName": "Green Spaces", "projectCosts": "1200", "hasPartner": "yes"}, core.LocaleEn)
	require.NoError(t, err)

	// the partner step applies and is unanswered
	_, err = fx.svc.Submit(ctx, app, core.LocaleEn)
	require.Error(t, err)
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.FieldMap(), "partnerName")

	_, app, err = fx.svc.SaveStep(ctx, app, form.StepRef{Section: "your-project", Number: 2}, form.Data{"partnerName": "Parks Trust"}, core.LocaleEn)
	require.NoError(t, err)

	app, err = fx.svc.Submit(ctx, app, core.LocaleEn)
	require.NoError(t, err)
	assert.True(t, app.IsComplete())
	assert.Equal(t, fx.now, app.SubmittedAt)

	sent := fx.mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@test.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Project costs: £1,200")
	assert.Contains(t, sent[0].TextContent, "Partner name: Parks Trust")

	_, err = fx.svc.Submit(ctx, app, core.LocaleEn)
	assert.Equal(t, application.ErrAlreadySubmitted, err)
	_, _, err = fx.svc.SaveStep(ctx, app, ref, form.Data{}, core.LocaleEn)
	assert.Equal(t, application.ErrAlreadySubmitted, err)
}

func TestSubmitUnknownApplicant(t *testing.T) {
	fx := newFixture(t)
	app, err := fx.svc.Create(ctx, "usr-gone", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	_, app, err = fx.svc.SaveStep(ctx, app, form.StepRef{Section: "your-project", Number: 1},
		form.Data{"projectName": "Green Spaces", "projectCosts": "1200", "hasPartner": "no"}, core.LocaleEn)
	require.NoError(t, err)

	app, err = fx.svc.Submit(ctx, app, core.LocaleEn)
	require.NoError(t, err)
	assert.True(t, app.IsComplete())
	assert.Empty(t, fx.mail.SentMessages())
	assert.Len(t, fx.logger.errors, 1)
}

func TestSummarise(t *testing.T) {
	fx := newFixture(t)
	app, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleCy)
	require.NoError(t, err)
	_, app, err = fx.svc.SaveStep(ctx, app, form.StepRef{Section: "your-project", Number: 1},
		form.Data{"projectName": "Gerddi", "hasPartner": "no"}, core.LocaleCy)
	require.NoError(t, err)

	summary, err := fx.svc.Summarise(app, core.LocaleCy)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "Eich prosiect", summary[0].Title)
	assert.Equal(t, []application.SummaryLine{
		{Name: "projectName", Label: "Enw'r prosiect", Value: "Gerddi"},
		{Name: "hasPartner", Label: "Partner?", Value: "No"},
	}, summary[0].Fields)
}

func TestListAndDelete(t *testing.T) {
	fx := newFixture(t)
	app1, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	fx.now = fx.now.Add(time.Minute)
	app2, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, "usr-2", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)

	apps, err := fx.svc.ListForUser(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, app2.ID, apps[0].ID)

	require.NoError(t, fx.svc.Delete(ctx, app1))
	apps, err = fx.svc.ListForUser(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, apps, 1)

	_, err = fx.svc.Get(ctx, app1.ID)
	assert.Equal(t, application.ErrNotFound, err)
}

func TestRemindersAndExpiry(t *testing.T) {
	fx := newFixture(t)
	created := fx.now
	app, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	orphan, err := fx.svc.Create(ctx, "usr-gone", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	submitted, err := fx.svc.Create(ctx, "usr-1", "awards-for-all", core.LocaleEn)
	require.NoError(t, err)
	_, submitted, err = fx.svc.SaveStep(ctx, submitted, form.StepRef{Section: "your-project", Number: 1},
		form.Data{"projectName": "Done", "projectCosts": "100", "hasPartner": "no"}, core.LocaleEn)
	require.NoError(t, err)
	_, err = fx.svc.Submit(ctx, submitted, core.LocaleEn)
	require.NoError(t, err)
	fx.mail.Reset()

	// nothing is due a day after creation
	n, err := fx.svc.SendDueReminders(ctx, created.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	// one month before expiry
	oneMonth := app.ExpiresAt.Add(-30 * 24 * time.Hour)
	n, err = fx.svc.SendDueReminders(ctx, oneMonth)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	sent := fx.mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your National Lottery Awards for All application will be deleted in one month", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "/apply/awards-for-all/"+app.ID)

	// sent reminders are not sent again
	n, err = fx.svc.SendDueReminders(ctx, oneMonth)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the week and day reminders are both due by the day before expiry
	fx.mail.Reset()
	n, err = fx.svc.SendDueReminders(ctx, app.ExpiresAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, fx.mail.SentMessages(), 2)

	expired, err := fx.svc.ExpireApplications(ctx, app.ExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	_, err = fx.svc.Get(ctx, app.ID)
	assert.Equal(t, application.ErrNotFound, err)
	_, err = fx.svc.Get(ctx, orphan.ID)
	assert.Equal(t, application.ErrNotFound, err)
	_, err = fx.svc.Get(ctx, submitted.ID)
	assert.NoError(t, err)
}

// Package application keeps the answers applicants give to funding forms, from the first
// saved step to submission, and reminds them before unsubmitted applications expire.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("application not found")
	ErrAlreadySubmitted = errors.New("application already submitted")
)

type (
	Repository interface {
		// CreateApplication stores a new application along with its expiry queue.
		CreateApplication(ctx context.Context, app Application, queue []QueuedEmail) (Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		QueryApplications(ctx context.Context, filter QueryFilter) ([]Application, error)
		UpdateApplication(ctx context.Context, app Application) (Application, error)
		// DeleteApplication soft-deletes an application.
		DeleteApplication(ctx context.Context, id string) error
		// DueEmails returns the unsent emails due at `now` of pending applications.
		DueEmails(ctx context.Context, now time.Time) ([]DueEmail, error)
		MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error
		// ExpireApplications soft-deletes the pending applications expired at `now`, returning how many were.
		ExpireApplications(ctx context.Context, now time.Time) (int64, error)
	}

	// UserFinder finds the applicant of an application.
	UserFinder interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo      Repository
		forms     *form.Registry
		validator *form.Validator
		users     UserFinder
		mailSvc   core.EmailService
		logger    core.Logger
		conf      *core.Config
		periods   []ReminderPeriod
	}
)

func NewService(
	repo Repository,
	forms *form.Registry,
	validator *form.Validator,
	users UserFinder,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:      repo,
		forms:     forms,
		validator: validator,
		users:     users,
		mailSvc:   mailSvc,
		logger:    logger,
		conf:      conf,
		periods:   DefaultReminderPeriods,
	}
}

// Form returns the form an application answers.
func (svc *Service) Form(app Application) (*form.Form, error) {
	return svc.forms.Get(app.FormID)
}

// Create starts a new application to a form, queueing its expiry reminders.
func (svc *Service) Create(ctx context.Context, userID, formID string, l core.Locale) (Application, error) {
	if _, err := svc.forms.Get(formID); err != nil {
		return Application{}, err
	}

	now := NowFunc().UTC()
	app := Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		FormID:    formID,
		Locale:    l,
		Data:      make(form.Data),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(svc.conf.Application.ExpiryDelta),
	}
	queue, err := BuildExpiryQueue(app, svc.periods, now)
	if err != nil {
		return Application{}, err
	}
	return svc.repo.CreateApplication(ctx, app, queue)
}

func (svc *Service) Get(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplication(ctx, id)
}

// GetForUser returns the application only if it belongs to the user.
func (svc *Service) GetForUser(ctx context.Context, id, userID string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.UserID != userID {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (svc *Service) ListForUser(ctx context.Context, userID string) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, QueryFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, filter)
}

// SaveStep validates the answers to a step and saves them whether they are valid or not,
// so that applicants can come back to fix them.
func (svc *Service) SaveStep(
	ctx context.Context,
	app Application,
	ref form.StepRef,
	values form.Data,
	l core.Locale,
) (form.StepResult, Application, error) {
	if app.IsComplete() {
		return form.StepResult{}, app, ErrAlreadySubmitted
	}
	f, err := svc.Form(app)
	if err != nil {
		return form.StepResult{}, app, err
	}
	step, err := f.Step(ref)
	if err != nil {
		return form.StepResult{}, app, err
	}

	res := svc.validator.ValidateStep(step, values, l)

	data := make(form.Data, len(app.Data))
	for k, v := range app.Data {
		data[k] = v
	}
	for _, fld := range step.Fields() {
		if v, ok := res.Values[fld.Name]; ok {
			data[fld.Name] = v
		} else {
			delete(data, fld.Name) // eg. unticked checkboxes are not posted
		}
	}
	app.Data = data
	app.UpdatedAt = NowFunc().UTC()

	app, err = svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return form.StepResult{}, app, errors.Wrap(err, "updating application")
	}
	return res, app, nil
}

// Progress reports how far the application has got through its form.
func (svc *Service) Progress(app Application) (form.Progress, error) {
	f, err := svc.Form(app)
	if err != nil {
		return form.Progress{}, err
	}
	return svc.validator.Progress(f, app.Data), nil
}

// Summarise formats the answers of the application, section by section.
func (svc *Service) Summarise(app Application, l core.Locale) ([]Summary, error) {
	f, err := svc.Form(app)
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, sec := range f.Sections() {
		sum := Summary{Slug: sec.Slug, Title: sec.Title.In(l)}
		for _, st := range sec.Steps() {
			if !st.IsShown(app.Data) {
				continue
			}
			shown := st.WithValues(app.Data)
			for _, fld := range shown.Fields() {
				value := fld.Format(l)
				if value == "" {
					continue
				}
				sum.Fields = append(sum.Fields, SummaryLine{Name: fld.Name, Label: fld.Label.In(l), Value: value})
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

// Submit validates every answer of the application and, if they are all valid, marks it complete
// and emails the applicant a copy. Invalid answers are returned as a core.ValidationError.
func (svc *Service) Submit(ctx context.Context, app Application, l core.Locale) (Application, error) {
	if app.IsComplete() {
		return app, ErrAlreadySubmitted
	}
	f, err := svc.Form(app)
	if err != nil {
		return app, err
	}
	if res := svc.validator.ValidateForm(f, app.Data, l); !res.IsValid() {
		return app, res.Err()
	}

	now := NowFunc().UTC()
	app.Status = StatusComplete
	app.SubmittedAt = now
	app.UpdatedAt = now
	app, err = svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return app, errors.Wrap(err, "updating application")
	}

	usr, err := svc.users.GetByID(ctx, app.UserID)
	if err != nil {
		svc.logger.Error("application.Submit: finding applicant", err, map[string]interface{}{"userID": app.UserID})
		return app, nil
	}
	summary, err := svc.Summarise(app, app.Locale)
	if err != nil {
		return app, err
	}
	svc.mailSvc.SendMessages(newSubmittedEmail(app, summary, usr.Address()))
	return app, nil
}

func (svc *Service) Delete(ctx context.Context, app Application) error {
	return svc.repo.DeleteApplication(ctx, app.ID)
}

// SendDueReminders sends the expiry reminders due at `now` and returns how many were sent.
func (svc *Service) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := svc.repo.DueEmails(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "querying due emails")
	}

	var sent int
	for _, d := range due {
		usr, err := svc.users.GetByID(ctx, d.Application.UserID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				continue
			}
			return sent, errors.Wrap(err, "finding applicant")
		}
		if msg, ok := newReminderEmail(d, usr.Address()); ok {
			svc.mailSvc.SendMessages(msg)
		}
		if err = svc.repo.MarkEmailSent(ctx, d.ID, now); err != nil {
			return sent, errors.Wrap(err, "marking email sent")
		}
		sent++
	}
	return sent, nil
}

// ExpireApplications deletes the pending applications that expired by `now`.
func (svc *Service) ExpireApplications(ctx context.Context, now time.Time) (int64, error) {
	n, err := svc.repo.ExpireApplications(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "expiring applications")
	}
	return n, nil
}

package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
)

type applicationRepository struct {
	db *applicationTable
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db.application}
}

// copyApp detaches the answers of an application from the stored ones.
func copyApp(app application.Application) application.Application {
	data := make(form.Data, len(app.Data))
	for k, v := range app.Data {
		data[k] = v
	}
	app.Data = data
	return app
}

func (repo *applicationRepository) CreateApplication(
	_ context.Context,
	app application.Application,
	queue []application.QueuedEmail,
) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := copyApp(app)
	repo.db.table[app.ID] = &stored
	for i := range queue {
		qe := queue[i]
		repo.db.emails[qe.ID] = &qe
	}
	return app, nil
}

func (repo *applicationRepository) GetApplication(_ context.Context, id string) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok && !repo.db.deleted[id] {
		return copyApp(*app), nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryApplications(
	_ context.Context,
	filter application.QueryFilter,
) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var apps []application.Application
	for id, app := range repo.db.table {
		if repo.db.deleted[id] {
			continue
		}
		if (filter.FormID != "" && app.FormID != filter.FormID) ||
			(filter.Status != "" && app.Status != filter.Status) ||
			(filter.UserID != "" && app.UserID != filter.UserID) {
			continue
		}
		apps = append(apps, copyApp(*app))
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].UpdatedAt.After(apps[j].UpdatedAt) })
	return apps, nil
}

func (repo *applicationRepository) UpdateApplication(
	_ context.Context,
	app application.Application,
) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[app.ID]; !ok || repo.db.deleted[app.ID] {
		return application.Application{}, application.ErrNotFound
	}
	stored := copyApp(app)
	repo.db.table[app.ID] = &stored
	return app, nil
}

func (repo *applicationRepository) DeleteApplication(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok || repo.db.deleted[id] {
		return application.ErrNotFound
	}
	repo.db.deleted[id] = true
	return nil
}

func (repo *applicationRepository) DueEmails(_ context.Context, now time.Time) ([]application.DueEmail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var due []application.DueEmail
	for _, qe := range repo.db.emails {
		if qe.IsSent() || qe.SendAt.After(now) || repo.db.deleted[qe.ApplicationID] {
			continue
		}
		app, ok := repo.db.table[qe.ApplicationID]
		if !ok || app.IsComplete() {
			continue
		}
		due = append(due, application.DueEmail{QueuedEmail: *qe, Application: copyApp(*app)})
	}
	sort.Slice(due, func(i, j int) bool { return due[i].SendAt.Before(due[j].SendAt) })
	return due, nil
}

func (repo *applicationRepository) MarkEmailSent(_ context.Context, id string, sentAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	qe, ok := repo.db.emails[id]
	if !ok {
		return application.ErrNotFound
	}
	qe.SentAt = sentAt
	return nil
}

func (repo *applicationRepository) ExpireApplications(_ context.Context, now time.Time) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int64
	for id, app := range repo.db.table {
		if !repo.db.deleted[id] && app.IsExpired(now) {
			repo.db.deleted[id] = true
			n++
		}
	}
	return n, nil
}

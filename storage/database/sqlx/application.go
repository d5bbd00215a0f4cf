package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
)

const applicationColumns = `id, user_id, form_id, locale, application_data, status, created_at, updated_at, expires_at, submitted_at`

type applicationRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	FormID      string         `db:"form_id"`
	Locale      string         `db:"locale"`
	Data        types.JSONText `db:"application_data"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	ExpiresAt   time.Time      `db:"expires_at"`
	SubmittedAt null.Time      `db:"submitted_at"`
}

func newApplicationRow(app application.Application) (applicationRow, error) {
	data := app.Data
	if data == nil {
		data = make(form.Data)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return applicationRow{}, errors.Wrap(err, "encoding application data")
	}
	return applicationRow{
		ID:          app.ID,
		UserID:      app.UserID,
		FormID:      app.FormID,
		Locale:      string(app.Locale),
		Data:        raw,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
		ExpiresAt:   app.ExpiresAt,
		SubmittedAt: null.NewTime(app.SubmittedAt, !app.SubmittedAt.IsZero()),
	}, nil
}

func (r applicationRow) application() (application.Application, error) {
	data := make(form.Data)
	if len(r.Data) > 0 {
		if err := r.Data.Unmarshal(&data); err != nil {
			return application.Application{}, errors.Wrap(err, "decoding application data")
		}
	}
	return application.Application{
		ID:          r.ID,
		UserID:      r.UserID,
		FormID:      r.FormID,
		Locale:      core.ParseLocale(r.Locale),
		Data:        data,
		Status:      application.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		ExpiresAt:   r.ExpiresAt.UTC(),
		SubmittedAt: r.SubmittedAt.Time.UTC(),
	}, nil
}

type emailRow struct {
	ID            string    `db:"id"`
	ApplicationID string    `db:"application_id"`
	Type          string    `db:"email_type"`
	SendAt        time.Time `db:"send_at"`
	SentAt        null.Time `db:"sent_at"`
}

func (r emailRow) queuedEmail() application.QueuedEmail {
	return application.QueuedEmail{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		Type:          application.EmailType(r.Type),
		SendAt:        r.SendAt.UTC(),
		SentAt:        r.SentAt.Time.UTC(),
	}
}

type applicationRepository struct {
	db *sqlx.DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) application.Repository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) CreateApplication(
	ctx context.Context,
	app application.Application,
	queue []application.QueuedEmail,
) (application.Application, error) {
	row, err := newApplicationRow(app)
	if err != nil {
		return application.Application{}, err
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO application (` + applicationColumns + `)
		VALUES (:id, :user_id, :form_id, :locale, :application_data, :status, :created_at, :updated_at, :expires_at, :submitted_at)`
	if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	for _, qe := range queue {
		if _, err = tx.ExecContext(
			ctx,
			`INSERT INTO application_email (id, application_id, email_type, send_at) VALUES ($1, $2, $3, $4)`,
			qe.ID, qe.ApplicationID, string(qe.Type), qe.SendAt,
		); err != nil {
			return application.Application{}, errors.Wrap(err, "inserting queued email")
		}
	}
	if err = tx.Commit(); err != nil {
		return application.Application{}, errors.Wrap(err, "committing application")
	}
	return app, nil
}

func (repo *applicationRepository) GetApplication(ctx context.Context, id string) (application.Application, error) {
	var row applicationRow
	q := `SELECT ` + applicationColumns + ` FROM application WHERE id = $1 AND deleted_at IS NULL`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, errors.Wrap(err, "getting application")
	}
	return row.application()
}

func (repo *applicationRepository) QueryApplications(
	ctx context.Context,
	filter application.QueryFilter,
) ([]application.Application, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	for _, c := range []struct{ col, v string }{
		{"form_id", filter.FormID},
		{"status", string(filter.Status)},
		{"user_id", filter.UserID},
	} {
		if c.v != "" {
			args = append(args, c.v)
			conds = append(conds, c.col+" = $"+strconv.Itoa(len(args)))
		}
	}

	var rows []applicationRow
	q := `SELECT ` + applicationColumns + ` FROM application WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY updated_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	apps := make([]application.Application, 0, len(rows))
	for _, r := range rows {
		app, err := r.application()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (repo *applicationRepository) UpdateApplication(
	ctx context.Context,
	app application.Application,
) (application.Application, error) {
	row, err := newApplicationRow(app)
	if err != nil {
		return application.Application{}, err
	}
	q := `UPDATE application SET locale = :locale, application_data = :application_data, status = :status,
		updated_at = :updated_at, submitted_at = :submitted_at
		WHERE id = :id AND deleted_at IS NULL`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application")
	}
	if err = expectAffected(res); err != nil {
		if err == errNoRowsAffected {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return app, nil
}

func (repo *applicationRepository) DeleteApplication(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(
		ctx,
		`UPDATE application SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "deleting application")
	}
	if err = expectAffected(res); err != nil {
		if err == errNoRowsAffected {
			return application.ErrNotFound
		}
		return err
	}
	return nil
}

type dueEmailRow struct {
	emailRow
	App applicationRow `db:"app"`
}

func (repo *applicationRepository) DueEmails(ctx context.Context, now time.Time) ([]application.DueEmail, error) {
	q := `SELECT e.id, e.application_id, e.email_type, e.send_at, e.sent_at,
			a.id AS "app.id", a.user_id AS "app.user_id", a.form_id AS "app.form_id", a.locale AS "app.locale",
			a.application_data AS "app.application_data", a.status AS "app.status", a.created_at AS "app.created_at",
			a.updated_at AS "app.updated_at", a.expires_at AS "app.expires_at", a.submitted_at AS "app.submitted_at"
		FROM application_email e
		JOIN application a ON a.id = e.application_id
		WHERE e.sent_at IS NULL AND e.send_at <= $1 AND a.deleted_at IS NULL AND a.status = $2
		ORDER BY e.send_at`

	var rows []dueEmailRow
	if err := repo.db.SelectContext(ctx, &rows, q, now, string(application.StatusPending)); err != nil {
		return nil, errors.Wrap(err, "querying due emails")
	}
	due := make([]application.DueEmail, 0, len(rows))
	for _, r := range rows {
		app, err := r.App.application()
		if err != nil {
			return nil, err
		}
		due = append(due, application.DueEmail{QueuedEmail: r.queuedEmail(), Application: app})
	}
	return due, nil
}

func (repo *applicationRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE application_email SET sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return errors.Wrap(err, "marking email sent")
	}
	if err = expectAffected(res); err != nil {
		if err == errNoRowsAffected {
			return application.ErrNotFound
		}
		return err
	}
	return nil
}

func (repo *applicationRepository) ExpireApplications(ctx context.Context, now time.Time) (int64, error) {
	res, err := repo.db.ExecContext(
		ctx,
		`UPDATE application SET deleted_at = $1 WHERE deleted_at IS NULL AND status = $2 AND expires_at <= $1`,
		now, string(application.StatusPending),
	)
	if err != nil {
		return 0, errors.Wrap(err, "expiring applications")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting expired applications")
	}
	return n, nil
}

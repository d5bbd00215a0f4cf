package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
)

func testApplication() application.Application {
	return application.Application{
		ID:        "app-1",
		UserID:    "u-1",
		FormID:    "awards-for-all",
		Locale:    core.LocaleEn,
		Data:      form.Data{"projectName": "Green Spaces"},
		Status:    application.StatusPending,
		CreatedAt: testNow,
		UpdatedAt: testNow,
		ExpiresAt: testNow.AddDate(0, 3, 0),
	}
}

var applicationCols = []string{
	"id", "user_id", "form_id", "locale", "application_data", "status", "created_at", "updated_at", "expires_at", "submitted_at",
}

func TestApplicationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create with queue", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		app := testApplication()
		queue := []application.QueuedEmail{
			{ID: "e-1", ApplicationID: app.ID, Type: application.EmailOneMonth, SendAt: app.ExpiresAt.AddDate(0, 0, -30)},
			{ID: "e-2", ApplicationID: app.ID, Type: application.EmailOneDay, SendAt: app.ExpiresAt.AddDate(0, 0, -1)},
		}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO application (`)).
			WithArgs("app-1", "u-1", "awards-for-all", "en", sqlmock.AnyArg(), "pending", testNow, testNow, app.ExpiresAt, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for _, qe := range queue {
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO application_email`)).
				WithArgs(qe.ID, app.ID, string(qe.Type), qe.SendAt).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		created, err := repo.CreateApplication(ctx, app, queue)
		require.NoError(t, err)
		assert.Equal(t, app.ID, created.ID)
	})

	t.Run("create rolls back on queue failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO application (`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO application_email`)).WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := repo.CreateApplication(ctx, testApplication(), []application.QueuedEmail{{ID: "e-1"}})
		assert.Error(t, err)
	})

	t.Run("get decodes data", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		app := testApplication()
		mock.ExpectQuery(`FROM application WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs("app-1").
			WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(
				"app-1", "u-1", "awards-for-all", "cy", []byte(`{"projectName":"Green Spaces"}`),
				"complete", testNow, testNow, app.ExpiresAt, testNow,
			))

		got, err := repo.GetApplication(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, core.LocaleCy, got.Locale)
		assert.Equal(t, "Green Spaces", got.Data["projectName"])
		assert.True(t, got.IsComplete())
		assert.Equal(t, testNow, got.SubmittedAt)
	})

	t.Run("get deleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectQuery(`FROM application WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetApplication(ctx, "app-1")
		assert.Equal(t, application.ErrNotFound, err)
	})

	t.Run("query by user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE deleted_at IS NULL AND user_id = $1 ORDER BY updated_at DESC`)).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(applicationCols))

		apps, err := repo.QueryApplications(ctx, application.QueryFilter{UserID: "u-1"})
		require.NoError(t, err)
		assert.Empty(t, apps)
	})

	t.Run("soft delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE application SET deleted_at = $2 WHERE id = $1`)).
			WithArgs("app-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE application SET deleted_at = $2 WHERE id = $1`)).
			WithArgs("app-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.DeleteApplication(ctx, "app-1"))
		assert.Equal(t, application.ErrNotFound, repo.DeleteApplication(ctx, "app-1"))
	})

	t.Run("due emails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		app := testApplication()
		sendAt := app.ExpiresAt.AddDate(0, 0, -7)
		cols := append([]string{"id", "application_id", "email_type", "send_at", "sent_at"},
			"app.id", "app.user_id", "app.form_id", "app.locale", "app.application_data", "app.status",
			"app.created_at", "app.updated_at", "app.expires_at", "app.submitted_at",
		)
		mock.ExpectQuery(`FROM application_email e\s+JOIN application a`).
			WithArgs(sendAt, "pending").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				"e-1", "app-1", "ONE_WEEK", sendAt, nil,
				"app-1", "u-1", "awards-for-all", "en", []byte(`{}`), "pending", testNow, testNow, app.ExpiresAt, nil,
			))

		due, err := repo.DueEmails(ctx, sendAt)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, application.EmailOneWeek, due[0].Type)
		assert.False(t, due[0].IsSent())
		assert.Equal(t, "u-1", due[0].Application.UserID)
		assert.Equal(t, app.ExpiresAt, due[0].Application.ExpiresAt)
	})

	t.Run("mark sent", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE application_email SET sent_at = $2 WHERE id = $1`)).
			WithArgs("e-1", testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkEmailSent(ctx, "e-1", testNow))
	})

	t.Run("expire", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewApplicationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE application SET deleted_at = $1 WHERE deleted_at IS NULL AND status = $2`)).
			WithArgs(testNow, "pending").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.ExpireApplications(ctx, testNow)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})
}

func TestApplicationRowRoundTrip(t *testing.T) {
	app := testApplication()
	row, err := newApplicationRow(app)
	require.NoError(t, err)
	assert.False(t, row.SubmittedAt.Valid)
	assert.JSONEq(t, `{"projectName":"Green Spaces"}`, row.Data.String())

	got, err := row.application()
	require.NoError(t, err)
	assert.Equal(t, app.Data, got.Data)
	assert.True(t, got.SubmittedAt.IsZero())
}

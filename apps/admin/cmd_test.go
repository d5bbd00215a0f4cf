package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/forms"
	"github.com/biglotteryfund/funding/core/user"
	emailsvc "github.com/biglotteryfund/funding/services/email"
	"github.com/biglotteryfund/funding/storage/database"
	inmemdb "github.com/biglotteryfund/funding/storage/database/inmem"
)

const testPassword = "Xk9$mPq2!vRz"

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	cli     *commandLine
	usrSvc  *user.Service
	appSvc  *application.Service
	mail    *emailsvc.ConsoleServiceMock
	usrRepo user.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	user.InitValidators(validate, uni)

	reg, err := forms.NewRegistry()
	require.NoError(t, err)

	db := inmemdb.Open()
	env := &testEnv{
		mail:    emailsvc.NewConsoleServiceMock(conf),
		usrRepo: inmemdb.NewUserRepository(db),
	}
	env.usrSvc = user.NewService(env.usrRepo, env.mail, validate, uni, conf)
	env.appSvc = application.NewService(
		inmemdb.NewApplicationRepository(db), reg, form.NewValidator(), env.usrSvc, env.mail, testLogger{}, conf,
	)
	env.cli = &commandLine{
		usrRepo: env.usrRepo,
		appSvc:  env.appSvc,
		now:     time.Now,
	}
	return env
}

func (env *testEnv) createUser(t *testing.T, uname, email string) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            "Jane Doe",
		Username:        uname,
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	})
	require.NoError(t, err)
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { migrateFunc = database.Migrate })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "grants", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := env.cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	env := setup(t)
	existing := env.createUser(t, "janedoe", "jane@test.test")

	readPasswordFunc = func(int) ([]byte, error) { return []byte(testPassword), nil }
	t.Cleanup(func() { readPasswordFunc = term.ReadPassword })

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "samsmith"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"adduser", "-username", "samsmith", "-email", "sam@test.test", "-role", "boss"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"adduser", "-lol"}, wantErr: errHelp},
		{name: "create staff", args: []string{"adduser", "-username", "SamSmith", "-email", "SAM@test.test", "-name", "Sam Smith"}},
		{name: "promote existing", args: []string{"adduser", "-username", "janedoe", "-email", "jane@test.test", "-role", user.RoleStaffAdmin}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, env.cli.run(args))
		})
	}

	ctx := context.Background()
	sam, err := env.usrRepo.GetUserByEmail(ctx, "sam@test.test")
	require.NoError(t, err)
	assert.Equal(t, "samsmith", sam.Username)
	assert.Equal(t, "Sam Smith", sam.Name)
	assert.True(t, sam.IsActive)
	assert.True(t, sam.IsStaff())
	assert.NoError(t, sam.CheckPassword(testPassword))

	jane, err := env.usrRepo.GetUserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.True(t, jane.IsAdmin())
	assert.Equal(t, existing.CreatedAt, jane.CreatedAt)
}

func Test_commandLine_resetPassword(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "awesome", "awe@test.cd")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", " AWE@test.cd "}, extra: extra{pwd: "lmao"}},
	}
	t.Cleanup(func() { readPasswordFunc = term.ReadPassword })
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := env.cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			refreshedUsr, err := env.usrRepo.GetUserByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshedUsr.CheckPassword(tt.extra.(extra).pwd))
		})
	}
}

func Test_commandLine_applications(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	usr := env.createUser(t, "janedoe", "jane@test.test")

	app, err := env.appSvc.Create(ctx, usr.ID, forms.AwardsForAllID, core.LocaleEn)
	require.NoError(t, err)

	t.Run("nothing due yet", func(t *testing.T) {
		env.cli.now = time.Now
		require.NoError(t, env.cli.run([]string{"admin", "sendreminders"}))
		assert.Empty(t, env.mail.SentMessages())
	})

	t.Run("one week before expiry", func(t *testing.T) {
		env.mail.Reset()
		env.cli.now = func() time.Time { return app.ExpiresAt.Add(-6 * 24 * time.Hour) }
		require.NoError(t, env.cli.run([]string{"admin", "sendreminders"}))
		assert.NotEmpty(t, env.mail.SentMessages())

		// sent reminders are not sent again
		env.mail.Reset()
		require.NoError(t, env.cli.run([]string{"admin", "sendreminders"}))
		assert.Empty(t, env.mail.SentMessages())
	})

	t.Run("expire", func(t *testing.T) {
		env.cli.now = func() time.Time { return app.ExpiresAt.Add(-time.Hour) }
		require.NoError(t, env.cli.run([]string{"admin", "expire"}))
		_, err := env.appSvc.Get(ctx, app.ID)
		require.NoError(t, err)

		env.cli.now = func() time.Time { return app.ExpiresAt.Add(time.Hour) }
		require.NoError(t, env.cli.run([]string{"admin", "expire"}))
		_, err = env.appSvc.Get(ctx, app.ID)
		assert.Equal(t, application.ErrNotFound, err)
	})
}

package main

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/biglotteryfund/funding/apps/api/echo"
	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/forms"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
	"github.com/biglotteryfund/funding/core/user"
	emailsvc "github.com/biglotteryfund/funding/services/email"
	logsvc "github.com/biglotteryfund/funding/services/logger"
	"github.com/biglotteryfund/funding/services/postcode"
	"github.com/biglotteryfund/funding/services/session"
	"github.com/biglotteryfund/funding/storage/database"
	inmemdb "github.com/biglotteryfund/funding/storage/database/inmem"
	sqlxrepos "github.com/biglotteryfund/funding/storage/database/sqlx"
)

// storage holds the repositories and session store, and how to release them.
type storage struct {
	dig.Out

	Users    user.Repository
	Apps     application.Repository
	Orders   materials.Repository
	Surveys  survey.Repository
	Feedback feedback.Repository
	Sessions session.Store
	Close    func() error `name:"closeStorage"`
}

// appParams is what main needs to run the API.
type appParams struct {
	dig.In

	Conf     *core.Config
	Logger   core.Logger
	DBLogger core.Logger  `name:"dbLogger"`
	Close    func() error `name:"closeStorage"`
	Server   *echoapi.Server
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	UserSvc      *user.Service
	AppSvc       *application.Service
	Forms        *form.Registry
	MaterialsSvc *materials.Service
	SurveySvc    *survey.Service
	FeedbackSvc  *feedback.Service
	Sessions     session.Store
	Postcodes    postcode.Lookuper
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// newStorage keeps everything in memory in debug mode; otherwise PostgreSQL holds the data and Redis the sessions.
func newStorage(conf *core.Config) (storage, error) {
	if conf.Debug {
		db := inmemdb.Open()
		return storage{
			Users:    inmemdb.NewUserRepository(db),
			Apps:     inmemdb.NewApplicationRepository(db),
			Orders:   inmemdb.NewOrderRepository(db),
			Surveys:  inmemdb.NewSurveyRepository(db),
			Feedback: inmemdb.NewFeedbackRepository(db),
			Sessions: session.NewMemoryStore(conf.Server.SessionTTL),
			Close:    func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return storage{}, err
	}
	db, err := database.Connect(conf)
	if err != nil {
		return storage{}, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return storage{}, err
	}

	rdb := session.NewRedisClient(conf.Redis)
	store := session.NewRedisStore(rdb, conf.Server.SessionTTL)
	if err = store.Ping(context.Background()); err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return storage{}, errors.Wrap(err, "pinging redis")
	}

	return storage{
		Users:    sqlxrepos.NewUserRepository(db),
		Apps:     sqlxrepos.NewApplicationRepository(db),
		Orders:   sqlxrepos.NewOrderRepository(db),
		Surveys:  sqlxrepos.NewSurveyRepository(db),
		Feedback: sqlxrepos.NewFeedbackRepository(db),
		Sessions: store,
		Close: func() error {
			if err := rdb.Close(); err != nil {
				return err
			}
			return db.Close()
		},
	}, nil
}

func newEmailService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	return emailsvc.NewService(context.Background(), conf, logger)
}

func newValidate(uni *ut.UniversalTranslator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, uni)
	user.InitValidators(validate, uni)
	return validate
}

func newUserFinder(svc *user.Service) application.UserFinder { return svc }

func newPostcodeLookuper(conf *core.Config) postcode.Lookuper {
	return postcode.NewClient(conf.Postcode)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		UserSvc:      p.UserSvc,
		AppSvc:       p.AppSvc,
		Forms:        p.Forms,
		MaterialsSvc: p.MaterialsSvc,
		SurveySvc:    p.SurveySvc,
		FeedbackSvc:  p.FeedbackSvc,
		Sessions:     p.Sessions,
		Postcodes:    p.Postcodes,
	})
}

// newContainer returns the dig.Container that builds the API from conf.
func newContainer(conf *core.Config) (*dig.Container, error) {
	c := dig.New()
	for _, p := range []struct {
		constructor interface{}
		opts        []dig.ProvideOption
	}{
		{constructor: func() *core.Config { return conf }},
		{constructor: newLogger},
		{constructor: newDBLogger, opts: []dig.ProvideOption{dig.Name("dbLogger")}},
		{constructor: newStorage},
		{constructor: newEmailService},
		{constructor: core.NewUniversalTranslator},
		{constructor: newValidate},
		{constructor: forms.NewRegistry},
		{constructor: materials.LoadCatalogue},
		{constructor: form.NewValidator},
		{constructor: user.NewService},
		{constructor: newUserFinder},
		{constructor: application.NewService},
		{constructor: materials.NewService},
		{constructor: survey.NewService},
		{constructor: feedback.NewService},
		{constructor: newPostcodeLookuper},
		{constructor: newServer},
	} {
		if err := c.Provide(p.constructor, p.opts...); err != nil {
			return nil, errors.Wrap(err, "failed to provide dependency")
		}
	}
	return c, nil
}

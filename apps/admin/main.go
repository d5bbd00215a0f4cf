package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/forms"
	"github.com/biglotteryfund/funding/core/user"
	emailsvc "github.com/biglotteryfund/funding/services/email"
	logsvc "github.com/biglotteryfund/funding/services/logger"
	"github.com/biglotteryfund/funding/storage/database"
	sqlxrepos "github.com/biglotteryfund/funding/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("setting up database", err)
	}
	db, err := database.Connect(conf)
	if err != nil {
		logger.Fatal("connecting to database", err)
	}

	// set up services
	mailSvc, err := emailsvc.NewService(context.Background(), conf, logger)
	errAndDie(logger, db.Close, err)
	reg, err := forms.NewRegistry()
	errAndDie(logger, db.Close, err)

	usrRepo := sqlxrepos.NewUserRepository(db)
	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	user.InitValidators(validate, uni)
	usrSvc := user.NewService(usrRepo, mailSvc, validate, uni, conf)

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: usrRepo,
		appSvc: application.NewService(
			sqlxrepos.NewApplicationRepository(db), reg, form.NewValidator(), usrSvc, mailSvc, logger, conf,
		),
		now: time.Now,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, cleanup func() error, err error) {
	if err != nil {
		_ = cleanup()
		logger.Fatal("starting admin", err)
	}
}

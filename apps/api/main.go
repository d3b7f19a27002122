package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/tutorpost/backend/apps/api/echo"
	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/admin"
	"github.com/tutorpost/backend/core/note"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
	emailsvc "github.com/tutorpost/backend/services/email"
	logsvc "github.com/tutorpost/backend/services/logger"
	"github.com/tutorpost/backend/storage/database"
	pgrepos "github.com/tutorpost/backend/storage/database/pg"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	mailSvc, err := newMailService(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up mail service: %v", err), err)
	}

	adminSvc := admin.NewService(pgrepos.NewAdminRepository(db))
	tutorSvc := tutor.NewService(pgrepos.NewTutorRepository(db))
	studentSvc := student.NewService(pgrepos.NewStudentRepository(db))
	noteSvc := note.NewService(pgrepos.NewNoteRepository(db), note.NewMarkdownRenderer(), mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	note.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AdminSvc:   adminSvc,
		TutorSvc:   tutorSvc,
		StudentSvc: studentSvc,
		NoteSvc:    noteSvc,
		Validate:   validate,
		Translator: translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newMailService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	switch conf.Mail.Backend {
	case "smtp":
		return emailsvc.NewSMTPService(conf, logger)
	case "sendgrid":
		return emailsvc.NewSendgridService(conf, logger), nil
	default:
		return emailsvc.NewConsoleService(conf), nil
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

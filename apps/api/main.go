package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/escolaware/secretaria/apps/api/echo"
	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
	emailsvc "github.com/escolaware/secretaria/services/email"
	logsvc "github.com/escolaware/secretaria/services/logger"
	"github.com/escolaware/secretaria/storage/jsonfile"
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

	validate := validator.New()
	translator := newTranslator()
	collection.InitValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// set up storage; a collection file that exists but does not parse aborts
	// startup instead of silently serving an empty collection
	db, err := jsonfile.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	services, err := buildServices(conf, db, validate, mailSvc)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading collections: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

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

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Translator: translator,
			Services:   services,
		},
	)

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

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

// buildServices constructs one owned collection service per resource, each
// backed by its own JSON file.
func buildServices(
	conf *core.Config,
	db *jsonfile.DB,
	validate *validator.Validate,
	mailSvc core.EmailService,
) ([]*collection.Service, error) {
	newSvc := func(def collection.Definition, opts ...collection.ServiceOption) (*collection.Service, error) {
		return collection.NewService(def, db.Collection(def.Name), validate, opts...)
	}

	students, err := newSvc(collection.Students)
	if err != nil {
		return nil, err
	}
	teachers, err := newSvc(collection.Teachers)
	if err != nil {
		return nil, err
	}
	users, err := newSvc(collection.Users, collection.WithPasswordHashing("password"))
	if err != nil {
		return nil, err
	}
	appointments, err := newSvc(
		collection.Appointments,
		collection.WithCreateNotification(mailSvc, conf.AppointmentsInbox(), "Nova consulta agendada"),
	)
	if err != nil {
		return nil, err
	}
	events, err := newSvc(collection.Events)
	if err != nil {
		return nil, err
	}

	return []*collection.Service{students, teachers, users, appointments, events}, nil
}

func newTranslator() ut.Translator {
	ptBR := pt_BR.New()
	uni := ut.New(ptBR, ptBR)
	translator, _ := uni.GetTranslator("pt_BR")
	return translator
}

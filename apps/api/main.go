package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

func main() {
	c, err := newContainer(core.NewConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err = c.Invoke(run); err != nil {
		log.Fatal(errors.Wrap(err, "building the API"))
	}
}

func run(p appParams) {
	conf, logger, server := p.Conf, p.Logger, p.Server
	defer func() {
		if err := p.Close(); err != nil {
			p.DBLogger.Error("Failed to close", err)
		}
	}()

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
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal("server error", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)

			if err = server.Close(); err != nil {
				logger.Fatal("could not force stop server", err)
			}
		}
	}
}

package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
	"github.com/biglotteryfund/funding/core/user"
	"github.com/biglotteryfund/funding/services/postcode"
	"github.com/biglotteryfund/funding/services/session"
)

type (
	ServerDeps struct {
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

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	renderer, err := NewRenderer()
	if err != nil {
		s.deps.Logger.Fatal("parsing page templates", err)
	}

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Renderer = renderer
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Pre(localeMiddleware)
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware)

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	sessions := sessionMiddleware(s.deps.Sessions, conf.Server.SessionCookieName, conf.Server.SessionTTL)
	registerApplyRoutes(s.app.Group("/apply", s.auth.cookieJWT()), s.deps.AppSvc, s.deps.Forms, s.auth)
	registerMaterialsRoutes(s.app.Group("/materials", sessions), s.deps.MaterialsSvc)

	v1 := s.app.Group("/api/v1")
	jwt := s.auth.headerJWT()

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate, s.auth)
	registerSubmissionAPI(v1, s.deps.SurveySvc, s.deps.FeedbackSvc)
	registerAddressAPI(v1, s.deps.Postcodes)
	registerStaffAPI(v1.Group("/staff", jwt, staffMiddleware()), s.deps.AppSvc, s.deps.SurveySvc, s.deps.FeedbackSvc, s.deps.MaterialsSvc)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error the server stopped on.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal receives the signal asking the server to stop.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "home", newPage(ctx, core.Copy{
		En: "Funding from The National Lottery Community Fund",
		Cy: "Ariannu gan Gronfa Gymunedol y Loteri Genedlaethol",
	}, echo.Map{"forms": s.deps.Forms.IDs()}))
}

// Package echoapi exposes the application services over HTTP with echo.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/appointment"
	"github.com/trezcool/ustawi/core/assignment"
	"github.com/trezcool/ustawi/core/assistant"
	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/mood"
	"github.com/trezcool/ustawi/core/resource"
	"github.com/trezcool/ustawi/core/study"
	"github.com/trezcool/ustawi/core/task"
	"github.com/trezcool/ustawi/core/user"
)

type (
	ServerDeps struct {
		dig.In

		Conf           *core.Config
		Logger         core.Logger
		Clock          clockwork.Clock `optional:"true"`
		UserSvc        user.ServiceInterface
		JournalSvc     journal.ServiceInterface
		MoodSvc        mood.ServiceInterface
		TaskSvc        task.ServiceInterface
		StudySvc       study.ServiceInterface
		AssignmentSvc  assignment.ServiceInterface
		ResourceSvc    resource.ServiceInterface
		AppointmentSvc appointment.ServiceInterface
		Assistant      assistant.ServiceInterface
		Validate       *validator.Validate
		Translator     ut.Translator

		DisableReqLogs bool `optional:"true"`
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		srv      *http.Server
		tokens   *TokenIssuer
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		tokens:   NewTokenIssuer(deps.Conf, clock),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.srv = &http.Server{
		Addr:         deps.Conf.Server.Address,
		Handler:      s.app,
		ReadTimeout:  deps.Conf.Server.ReadTimeout,
		WriteTimeout: deps.Conf.Server.WriteTimeout,
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(metricsMiddleware())

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.tokens.jwtConfig())
	active := activeUserMiddleware(deps.UserSvc)

	registerUserAPI(v1, jwt, s.tokens, deps.UserSvc, deps.Validate)
	registerJournalAPI(v1, jwt, active, deps.JournalSvc)
	registerMoodAPI(v1, jwt, active, deps.MoodSvc)
	registerTaskAPI(v1, jwt, active, deps.TaskSvc)
	registerStudyAPI(v1, jwt, active, deps.StudySvc)
	registerAssignmentAPI(v1, jwt, active, deps.AssignmentSvc)
	registerResourceAPI(v1, jwt, active, deps.ResourceSvc)
	registerAppointmentAPI(v1, jwt, active, deps.AppointmentSvc)
	registerChatbotAPI(v1, jwt, active, deps.Assistant)
}

// Start listens and serves until the server is shut down. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors reports the errors which stopped the server.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives on SIGINT/SIGTERM and when a handler hits a shutdown error.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

// Shutdown gracefully stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.srv.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.srv.Close()
}

// TokenIssuer returns the issuer used to sign the server's JWTs.
func (s *Server) TokenIssuer() *TokenIssuer {
	return s.tokens
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}

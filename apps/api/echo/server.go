package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/assignment"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/attendance"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/skiprequest"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/slot"
	"github.com/Zimbwa03/Global-Intercessors-sub006/core/update"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		SlotSvc        *slot.Service
		AssignmentSvc  *assignment.Service
		AttendanceSvc  *attendance.Service
		SkipRequestSvc *skiprequest.Service
		UpdateSvc      *update.Service
		CampaignSvc    *campaign.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1", middleware.JWTWithConfig(jwtConfig(conf)))

	registerSlotAPI(v1, s.deps.SlotSvc, s.deps.AssignmentSvc, s.deps.Validate)
	registerAssignmentAPI(v1, s.deps.AssignmentSvc, s.deps.SkipRequestSvc, s.deps.Validate)
	registerSkipRequestAPI(v1, s.deps.SkipRequestSvc, s.deps.Validate)
	registerAttendanceAPI(v1, s.deps.AttendanceSvc, s.deps.AssignmentSvc, s.deps.Validate)
	registerCampaignAPI(v1, s.deps.CampaignSvc, s.deps.Validate)
	registerJobAPI(v1, s.deps.CampaignSvc, s.deps.AssignmentSvc, conf, s.deps.Validate)
	registerUpdateAPI(v1, s.deps.UpdateSvc)
}

// Start listens on the configured address and reports the listener error on Errors.
// Interrupt and terminate signals are relayed on ShutdownSignal.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "listening")
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signalled
	}
}

// Shutdown stops accepting requests and waits for the outstanding ones, at most until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Global Intercessors API!")
}

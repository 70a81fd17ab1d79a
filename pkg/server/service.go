package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/lakewatch/lakeview/frontend"
	"github.com/lakewatch/lakeview/pkg/session"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service defines the dashboard server interface
type Service interface {
	Start(ctx context.Context) error
	Stop() error
}

type service struct {
	app     *fiber.App
	server  *http.Server
	config  *Config
	session *session.Session
	refresh *cron.Cron
	log     logrus.FieldLogger
}

// NewService creates the dashboard server for a session.
func NewService(log logrus.FieldLogger, config *Config, sess *session.Session) (Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &service{
		config:  config,
		session: sess,
		log:     log.WithField("component", "server"),
	}, nil
}

// Start starts the API and frontend server
func (s *service) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Dashboard server is disabled")
		return nil
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		AppName:      "lakeview",
	})
	setupMiddleware(s.app)

	newHandlers(s.session, s.log).register(s.app.Group("/api/v1"))

	s.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/", func(c fiber.Ctx) error {
		c.Type("html")
		return c.Send(frontend.IndexHTML)
	})

	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           adaptor.FiberApp(s.app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.WithField("addr", s.config.Addr).Info("Starting dashboard server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server failed to start")
		}
	}()

	if s.config.RefreshSchedule != "" {
		if err := s.startRefresh(ctx); err != nil {
			return err
		}
	}

	return nil
}

// startRefresh schedules periodic table re-discovery. Refresh only updates
// the discoverable set; the dataset itself is mutated solely by
// selection-driven loads.
func (s *service) startRefresh(ctx context.Context) error {
	s.refresh = cron.New()
	_, err := s.refresh.AddFunc(s.config.RefreshSchedule, func() {
		if err := s.session.Refresh(ctx); err != nil {
			s.log.WithError(err).Warn("Table re-discovery failed")
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	s.refresh.Start()
	s.log.WithField("schedule", s.config.RefreshSchedule).Info("Scheduled table re-discovery")
	return nil
}

// Stop gracefully shuts down the server
func (s *service) Stop() error {
	if s.refresh != nil {
		s.refresh.Stop()
	}
	if s.server == nil {
		return nil
	}

	s.log.Info("Stopping dashboard server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

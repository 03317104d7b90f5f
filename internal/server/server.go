package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/email"
	"github.com/shelfwise/shelfwise/internal/usecase"
)

// Service is the operator-facing surface of the notification subsystem.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	Close() error

	ListLoans(context.Context, usecase.ListLoansOption) ([]usecase.Loan, int, error)
	GetLoanByID(context.Context, uuid.UUID) (usecase.Loan, error)
	CreateLoan(context.Context, usecase.Loan) (usecase.Loan, error)
	ReturnLoan(context.Context, uuid.UUID) (usecase.Loan, error)

	ListContacts(context.Context, usecase.ListContactsOption) ([]usecase.Contact, int, error)
	CreateContact(context.Context, usecase.Contact) (usecase.Contact, error)

	ListNotifications(context.Context, usecase.ListNotificationsOption) ([]usecase.Notification, int, error)
	GetNotificationByID(context.Context, uuid.UUID) (usecase.Notification, error)
	DetectOverdue(context.Context) (int, error)
	DetectDueSoon(context.Context) (int, error)
	DeliverPending(context.Context) (int, int, error)
	SendNotification(context.Context, uuid.UUID) error
}

type Server struct {
	server    Service
	validator *validator.Validate
}

// App bundles the HTTP server with the service it fronts.
type App struct {
	httpServer *http.Server
	service    Service
}

func NewApp(logger *slog.Logger) (*App, error) {
	repo := database.New()

	mailer, err := email.NewEmailProvider(
		os.Getenv(config.ENV_KEY_SMTP_HOST),
		os.Getenv(config.ENV_KEY_SMTP_USERNAME),
		os.Getenv(config.ENV_KEY_SMTP_PASSWORD),
		os.Getenv(config.ENV_KEY_SMTP_PORT),
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("server: mail transport: %w", err)
	}

	uc := usecase.New(repo, mailer, logger)

	s := &Server{
		server:    uc,
		validator: validator.New(),
	}

	port, _ := strconv.Atoi(os.Getenv(config.ENV_KEY_PORT))
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &App{
		httpServer: httpServer,
		service:    uc,
	}, nil
}

func (a *App) Addr() string {
	return a.httpServer.Addr
}

func (a *App) ListenAndServe() error {
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return a.service.Close()
}

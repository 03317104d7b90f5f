package queue

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/email"
	"github.com/shelfwise/shelfwise/internal/queue/handlers"
	"github.com/shelfwise/shelfwise/internal/usecase"
)

// Worker processes the detection and delivery tasks emitted by the
// scheduler. Each task execution is isolated: a failing run is logged and
// retried without disturbing the other task types.
type Worker struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
	repo        usecase.Repository
	logger      *slog.Logger
}

// NewWorker creates a fully configured worker with all dependencies.
func NewWorker(logger *slog.Logger) (*Worker, error) {
	repo := database.New()

	mailer, err := email.NewEmailProvider(
		os.Getenv(config.ENV_KEY_SMTP_HOST),
		os.Getenv(config.ENV_KEY_SMTP_USERNAME),
		os.Getenv(config.ENV_KEY_SMTP_PASSWORD),
		os.Getenv(config.ENV_KEY_SMTP_PORT),
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("queue: mail transport: %w", err)
	}

	uc := usecase.New(repo, mailer, logger)

	workerConcurrency := 10
	if wc := os.Getenv(config.ENV_KEY_WORKER_CONCURRENCY); wc != "" {
		var n int
		if _, err := fmt.Sscanf(wc, "%d", &n); err == nil && n > 0 {
			workerConcurrency = n
		}
	}

	asynqServer := asynq.NewServer(
		redisOpt(),
		asynq.Config{
			Concurrency: workerConcurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()

	h := handlers.NewHandlers(uc, logger)

	mux.HandleFunc(config.TASK_CHECK_OVERDUE, h.HandleCheckOverdue)
	mux.HandleFunc(config.TASK_CHECK_DUE_SOON, h.HandleCheckDueSoon)
	mux.HandleFunc(config.TASK_DELIVER_PENDING, h.HandleDeliverPending)

	logger.Info("worker registered handlers",
		slog.String("tasks", config.TASK_CHECK_OVERDUE+", "+config.TASK_CHECK_DUE_SOON+", "+config.TASK_DELIVER_PENDING))

	return &Worker{
		asynqServer: asynqServer,
		mux:         mux,
		repo:        repo,
		logger:      logger,
	}, nil
}

// Start starts the worker server.
func (w *Worker) Start() error {
	return w.asynqServer.Start(w.mux)
}

// Stop stops the worker server gracefully, letting in-flight tasks finish.
func (w *Worker) Stop() {
	w.asynqServer.Shutdown()

	if err := w.repo.Close(); err != nil {
		w.logger.Error("error closing database", slog.String("err", err.Error()))
	}
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr: fmt.Sprintf("%s:%s",
			os.Getenv(config.ENV_KEY_REDIS_HOST),
			os.Getenv(config.ENV_KEY_REDIS_PORT),
		),
		Password: os.Getenv(config.ENV_KEY_REDIS_PASSWORD),
	}
}

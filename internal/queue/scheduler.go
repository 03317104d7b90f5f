package queue

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"github.com/shelfwise/shelfwise/internal/config"
)

// Scheduler emits the recurring tasks: overdue detection and due-soon
// reminders once a day, the delivery batch hourly. The cadences are
// independent; a failed task run never cancels the other entries.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	checkHour := 8
	if h, err := strconv.Atoi(os.Getenv(config.ENV_KEY_OVERDUE_CHECK_HOUR)); err == nil && h >= 0 && h <= 23 {
		checkHour = h
	}

	deliveryCron := os.Getenv(config.ENV_KEY_DELIVERY_CRON)
	if deliveryCron == "" {
		deliveryCron = "0 * * * *"
	}

	scheduler := asynq.NewScheduler(redisOpt(), nil)

	checkCron := fmt.Sprintf("0 %d * * *", checkHour)

	entries := []struct {
		cron string
		task string
	}{
		{checkCron, config.TASK_CHECK_OVERDUE},
		{checkCron, config.TASK_CHECK_DUE_SOON},
		{deliveryCron, config.TASK_DELIVER_PENDING},
	}

	for _, e := range entries {
		id, err := scheduler.Register(e.cron, asynq.NewTask(e.task, nil))
		if err != nil {
			return nil, fmt.Errorf("queue: register %s: %w", e.task, err)
		}
		logger.Info("scheduler registered entry",
			slog.String("task", e.task),
			slog.String("cron", e.cron),
			slog.String("entry_id", id),
		)
	}

	return &Scheduler{scheduler: scheduler}, nil
}

// Start runs the scheduler loop until Stop is called.
func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
}

package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleCheckOverdue processes the daily overdue detection task.
func (h *Handlers) HandleCheckOverdue(ctx context.Context, task *asynq.Task) error {
	queued, err := h.usecase.DetectOverdue(ctx)
	if err != nil {
		h.logger.Error("overdue check failed", slog.String("err", err.Error()))
		return err
	}

	h.logger.Info("overdue check completed", slog.Int("queued", queued))
	return nil
}

// HandleCheckDueSoon processes the daily due-soon reminder task.
func (h *Handlers) HandleCheckDueSoon(ctx context.Context, task *asynq.Task) error {
	queued, err := h.usecase.DetectDueSoon(ctx)
	if err != nil {
		h.logger.Error("due-soon check failed", slog.String("err", err.Error()))
		return err
	}

	h.logger.Info("due-soon check completed", slog.Int("queued", queued))
	return nil
}

// HandleDeliverPending processes the recurring delivery batch task. Failed
// items stay pending and ride along on the next batch, so a partial batch
// is still a successful task run.
func (h *Handlers) HandleDeliverPending(ctx context.Context, task *asynq.Task) error {
	sent, failed, err := h.usecase.DeliverPending(ctx)
	if err != nil {
		h.logger.Error("delivery batch failed", slog.String("err", err.Error()))
		return err
	}

	h.logger.Info("delivery batch completed",
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	return nil
}

package server

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Notification struct {
	ID        string  `json:"id"`
	LoanID    string  `json:"loan_id"`
	ContactID string  `json:"contact_id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	CreatedAt string  `json:"created_at"`
	SentAt    *string `json:"sent_at,omitempty"`
	Delivered bool    `json:"delivered"`

	Loan    *Loan    `json:"loan,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

type ListNotificationsRequest struct {
	Skip      int    `query:"skip"`
	Limit     int    `query:"limit" validate:"required,min=1,max=100"`
	ClassName string `query:"class"`
	Section   string `query:"section"`
	State     string `query:"state" validate:"omitempty,oneof=pending sent all"`
}

func (s *Server) ListNotifications(ctx echo.Context) error {
	var req ListNotificationsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	notifications, total, err := s.server.ListNotifications(ctx.Request().Context(), usecase.ListNotificationsOption{
		Skip:      req.Skip,
		Limit:     req.Limit,
		ClassName: req.ClassName,
		Section:   req.Section,
		State:     usecase.NotificationState(req.State),
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, convertNotification(n))
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Total: total,
			Skip:  req.Skip,
			Limit: req.Limit,
		},
	})
}

type GetNotificationByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetNotificationByID(ctx echo.Context) error {
	var req GetNotificationByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	n, err := s.server.GetNotificationByID(ctx.Request().Context(), id)
	if err != nil {
		var nf usecase.ErrNotFound
		if errors.As(err, &nf) {
			return ctx.JSON(404, map[string]string{"error": nf.Message})
		}
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: convertNotification(n)})
}

// RunDetection triggers an overdue detection sweep on demand.
func (s *Server) RunDetection(ctx echo.Context) error {
	queued, err := s.server.DetectOverdue(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{
		Data:    map[string]int{"queued": queued},
		Message: "detection completed",
	})
}

// RunReminders triggers a due-soon reminder sweep on demand.
func (s *Server) RunReminders(ctx echo.Context) error {
	queued, err := s.server.DetectDueSoon(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{
		Data:    map[string]int{"queued": queued},
		Message: "reminder sweep completed",
	})
}

// RunDelivery triggers a delivery batch on demand.
func (s *Server) RunDelivery(ctx echo.Context) error {
	sent, failed, err := s.server.DeliverPending(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{
		Data:    map[string]int{"sent": sent, "failed": failed},
		Message: "delivery completed",
	})
}

type SendNotificationRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

// SendNotification delivers one notification on demand. A target that is
// already delivered is reported as a conflict, not re-sent.
func (s *Server) SendNotification(ctx echo.Context) error {
	var req SendNotificationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	err := s.server.SendNotification(ctx.Request().Context(), id)
	if errors.Is(err, usecase.ErrAlreadyDelivered) {
		return ctx.JSON(409, map[string]string{"error": err.Error()})
	}
	if err != nil {
		var nf usecase.ErrNotFound
		if errors.As(err, &nf) {
			return ctx.JSON(404, map[string]string{"error": nf.Message})
		}
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "notification sent"})
}

func convertNotification(n usecase.Notification) Notification {
	notification := Notification{
		ID:        n.ID.String(),
		LoanID:    n.LoanID.String(),
		ContactID: n.ContactID.String(),
		Kind:      string(n.Kind),
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		Delivered: n.Delivered,
	}
	if n.SentAt != nil {
		t := n.SentAt.Format(time.RFC3339)
		notification.SentAt = &t
	}
	if n.Loan != nil {
		loan := convertLoan(*n.Loan)
		notification.Loan = &loan
	}
	if n.Contact != nil {
		contact := convertContact(*n.Contact)
		notification.Contact = &contact
	}
	return notification
}

package server

import (
	"github.com/labstack/echo/v4"

	"github.com/shelfwise/shelfwise/internal/usecase"
)

type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassName string `json:"class_name"`
	Section   string `json:"section"`
	Active    bool   `json:"active"`
}

type ListContactsRequest struct {
	Skip      int    `query:"skip"`
	Limit     int    `query:"limit" validate:"required,min=1,max=100"`
	ClassName string `query:"class"`
	Section   string `query:"section"`
	Active    bool   `query:"active"`
}

func (s *Server) ListContacts(ctx echo.Context) error {
	var req ListContactsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	contacts, total, err := s.server.ListContacts(ctx.Request().Context(), usecase.ListContactsOption{
		Skip:       req.Skip,
		Limit:      req.Limit,
		ClassName:  req.ClassName,
		Section:    req.Section,
		ActiveOnly: req.Active,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		list = append(list, convertContact(c))
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

type CreateContactRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	ClassName string `json:"class_name" validate:"required"`
	Section   string `json:"section" validate:"required"`
	Active    *bool  `json:"active"`
}

func (s *Server) CreateContact(ctx echo.Context) error {
	var req CreateContactRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	contact, err := s.server.CreateContact(ctx.Request().Context(), usecase.Contact{
		Name:      req.Name,
		Email:     req.Email,
		ClassName: req.ClassName,
		Section:   req.Section,
		Active:    active,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(201, Res{Data: convertContact(contact)})
}

func convertContact(c usecase.Contact) Contact {
	return Contact{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		ClassName: c.ClassName,
		Section:   c.Section,
		Active:    c.Active,
	}
}

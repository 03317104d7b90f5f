package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/api/health", s.healthHandler)

	var loanGroup = e.Group("/api/v1/loans")
	loanGroup.GET("", s.ListLoans)
	loanGroup.POST("", s.CreateLoan)
	loanGroup.GET("/:id", s.GetLoanByID)
	loanGroup.POST("/:id/return", s.ReturnLoan)

	var contactGroup = e.Group("/api/v1/contacts")
	contactGroup.GET("", s.ListContacts)
	contactGroup.POST("", s.CreateContact)

	var notificationGroup = e.Group("/api/v1/notifications")
	notificationGroup.GET("", s.ListNotifications)
	notificationGroup.GET("/:id", s.GetNotificationByID)
	notificationGroup.POST("/detect", s.RunDetection)
	notificationGroup.POST("/remind", s.RunReminders)
	notificationGroup.POST("/deliver", s.RunDelivery)
	notificationGroup.POST("/:id/send", s.SendNotification)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.server.Health())
}

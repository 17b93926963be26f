package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sebastianiv21/expense-tracker/internal/category"
	handlers "github.com/sebastianiv21/expense-tracker/internal/http"
	"github.com/sebastianiv21/expense-tracker/internal/recurring"
	"github.com/sebastianiv21/expense-tracker/internal/reports"
	"github.com/sebastianiv21/expense-tracker/internal/summary"
	"github.com/sebastianiv21/expense-tracker/internal/transactions"
)

type Router struct {
	AuthHandler      *handlers.AuthHandler
	CategoryHandler  *category.Handler
	TxHandler        *transactions.Handler
	RecurringHandler *recurring.Handler
	SummaryHandler   *summary.Handler
	ReportsHandler   *reports.Handler
	AuthMW           fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		app.Post("/api/auth/signup", RateLimitAuth(), r.AuthHandler.Signup)
		app.Post("/api/auth/login", RateLimitAuth(), r.AuthHandler.Login)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	if r.CategoryHandler != nil {
		app.Get("/api/categories", r.AuthMW, r.CategoryHandler.List)
		app.Post("/api/categories", r.AuthMW, r.CategoryHandler.Create)
		app.Delete("/api/categories/:id", r.AuthMW, r.CategoryHandler.Delete)
	}

	if r.TxHandler != nil {
		app.Get("/api/transactions", r.AuthMW, r.TxHandler.List)
		app.Post("/api/transactions", r.AuthMW, RateLimitWrite(), r.TxHandler.Create)
		app.Delete("/api/transactions/:id", r.AuthMW, r.TxHandler.Delete)
	}

	if r.RecurringHandler != nil {
		app.Get("/api/recurring", r.AuthMW, r.RecurringHandler.List)
		app.Post("/api/recurring", r.AuthMW, RateLimitWrite(), r.RecurringHandler.Create)
		app.Patch("/api/recurring/:id", r.AuthMW, r.RecurringHandler.Update)
		app.Delete("/api/recurring/:id", r.AuthMW, r.RecurringHandler.Delete)
		app.Post("/api/recurring/:id/generate", r.AuthMW, RateLimitWrite(), r.RecurringHandler.Generate)
	}

	if r.SummaryHandler != nil {
		app.Get("/api/summary", r.AuthMW, r.SummaryHandler.GetSummary)
	}

	if r.ReportsHandler != nil {
		app.Get("/api/reports/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)
		app.Get("/api/reports/transactions.xlsx", r.AuthMW, r.ReportsHandler.TransactionsXLSX)
	}
}

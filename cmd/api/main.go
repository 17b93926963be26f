package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sebastianiv21/expense-tracker/internal/audit"
	"github.com/sebastianiv21/expense-tracker/internal/category"
	apphttp "github.com/sebastianiv21/expense-tracker/internal/http"
	"github.com/sebastianiv21/expense-tracker/internal/recurring"
	"github.com/sebastianiv21/expense-tracker/internal/reports"
	"github.com/sebastianiv21/expense-tracker/internal/router"
	"github.com/sebastianiv21/expense-tracker/internal/summary"
	"github.com/sebastianiv21/expense-tracker/internal/transactions"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	secret := mustJWTSecret()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("error pinging database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	authHandler := &apphttp.AuthHandler{DB: pool, Secret: secret}
	categoryRepo := category.NewRepository(pool)
	categoryHandler := category.NewHandler(categoryRepo)
	txRepo := transactions.NewRepo(pool)
	txHandler := transactions.NewHandler(txRepo)
	recurringStore := recurring.NewPostgresStore(pool)
	engine := recurring.NewEngine(txRepo, recurringStore)
	auditRecorder := audit.NewRecorder(pool)
	recurringHandler := recurring.NewHandler(engine, auditRecorder)
	summaryHandler := &summary.Handler{Repo: summary.Repo{DB: pool}}
	reportsHandler := reports.NewHandler(pool)

	r := &router.Router{
		AuthHandler:      authHandler,
		CategoryHandler:  categoryHandler,
		TxHandler:        txHandler,
		RecurringHandler: recurringHandler,
		SummaryHandler:   summaryHandler,
		ReportsHandler:   reportsHandler,
		AuthMW:           router.JWTMiddleware(secret),
	}
	r.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on port", port)
	log.Fatal(app.Listen(":" + port))
}

func mustJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return []byte(secret)
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

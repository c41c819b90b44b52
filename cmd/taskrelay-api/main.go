package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/velmar/taskrelay-api/internal/config"
	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/handlers"
	authmw "github.com/velmar/taskrelay-api/internal/middleware"
	"github.com/velmar/taskrelay-api/internal/realtime"
	"github.com/velmar/taskrelay-api/internal/scheduler"
	"github.com/velmar/taskrelay-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	workspaceService := services.NewWorkspaceService(db)
	taskService := services.NewTaskService(db)
	inviteService := services.NewInviteService(db)
	streakService := services.NewStreakService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	registry := realtime.NewRegistry()
	go registry.Run()

	authHandler := handlers.NewAuthHandler(userService, workspaceService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	taskHandler := handlers.NewTaskHandler(taskService, workspaceService, streakService, registry)
	inviteHandler := handlers.NewInviteHandler(inviteService, workspaceService, userService, emailService, cfg.BaseURL)
	syncHandler := handlers.NewSyncHandler(registry, workspaceService, userService, jwtService)
	sseHandler := handlers.NewSSEHandler(registry, workspaceService, userService)

	reminderScheduler := scheduler.NewReminderScheduler(taskService, registry)
	if err := reminderScheduler.Start(cfg.ReminderInterval); err != nil {
		log.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer reminderScheduler.Stop()

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)
	protected.Post("/workspaces/join", workspaceHandler.Join)
	protected.Get("/workspaces/:workspaceId", workspaceHandler.Get)
	protected.Patch("/workspaces/:workspaceId", workspaceHandler.Update)
	protected.Delete("/workspaces/:workspaceId", workspaceHandler.Delete)
	protected.Get("/workspaces/:workspaceId/members", workspaceHandler.Members)
	protected.Delete("/workspaces/:workspaceId/members/:userId", workspaceHandler.RemoveMember)
	protected.Post("/workspaces/:workspaceId/leave", workspaceHandler.Leave)
	protected.Post("/workspaces/:workspaceId/invite-code", workspaceHandler.RegenerateInviteCode)

	protected.Get("/workspaces/:workspaceId/tasks", taskHandler.List)
	protected.Post("/workspaces/:workspaceId/tasks", taskHandler.Create)
	protected.Delete("/workspaces/:workspaceId/tasks/:taskId", taskHandler.Delete)
	protected.Get("/tasks/:taskId", taskHandler.Get)
	protected.Patch("/tasks/:taskId", taskHandler.Update)

	protected.Get("/workspaces/:workspaceId/invites", inviteHandler.ListForWorkspace)
	protected.Post("/workspaces/:workspaceId/invites", inviteHandler.Create)
	protected.Delete("/workspaces/:workspaceId/invites/:inviteId", inviteHandler.Cancel)
	protected.Get("/invites", inviteHandler.ListMine)
	protected.Post("/invites/:inviteId/accept", inviteHandler.Accept)
	protected.Post("/invites/:inviteId/decline", inviteHandler.Decline)

	protected.Get("/workspaces/:workspaceId/events", sseHandler.Connect)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	api.Get("/ws", syncHandler.Connect)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/rs/cors"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/auth"
	"github.com/BallXZ48/markattendancebackend/internal/config"
	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/database"
	"github.com/BallXZ48/markattendancebackend/internal/handlers"
	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/routes"
	"github.com/BallXZ48/markattendancebackend/internal/session"
	"github.com/BallXZ48/markattendancebackend/internal/storage/mongodb"
	"github.com/BallXZ48/markattendancebackend/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	auth.Configure(cfg.JWTSecret)

	// Connect to MongoDB
	client, err := database.ConnectMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Fatal("Failed to disconnect from MongoDB:", err)
		}
	}()

	db := client.Database(cfg.DatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Wire repositories and services
	mailer := utils.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}
	courses := course.NewService(mongodb.NewCourseRepository(db))
	users := identity.NewService(mongodb.NewUserRepository(db), mailer)
	sessions := session.NewService(mongodb.NewSessionRepository(db), courses, cfg.EnforceOwnership)
	ledger := attendance.NewService(mongodb.NewAttendanceRepository(db), sessions)

	// Initialize router
	router := routes.SetupRouter(routes.Handlers{
		Auth:       handlers.NewAuthHandler(users),
		Users:      handlers.NewUserHandler(users),
		Courses:    handlers.NewCourseHandler(courses),
		Sessions:   handlers.NewSessionHandler(sessions),
		Attendance: handlers.NewAttendanceHandler(ledger),
	})

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// Wrap router with CORS
	handler := c.Handler(router)

	// Start server
	log.Printf("Server running on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

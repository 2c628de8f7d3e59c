package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/tutiful/tutiful_backend/configs"
	"github.com/tutiful/tutiful_backend/database"
	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/jobs"
	"github.com/tutiful/tutiful_backend/logger"
	"github.com/tutiful/tutiful_backend/routes"
	"github.com/tutiful/tutiful_backend/services"
	"github.com/tutiful/tutiful_backend/websocket"
)

func main() {
	logger.Init()
	defer logger.Close()

	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()

	loc := config.Location()
	hub := websocket.Default()

	h := &handlers.Handler{
		Users:         services.NewUserService(database.DB),
		Enrollments:   services.NewEnrollmentService(database.DB, config.Int("ENROLLMENT_MONTHS")).WithLocation(loc),
		Attendance:    services.NewAttendanceService(database.DB, loc),
		Analytics:     services.NewAnalyticsService(database.DB, loc),
		Notifications: services.NewNotificationService(database.DB, hub, loc),
		Payments:      services.NewPaymentService(database.DB, config.Float("PLATFORM_FEE_RATE")),
		Hub:           hub,
	}

	c := cron.New(cron.WithLocation(loc))
	if err := jobs.Schedule(c, jobs.Services{
		Enrollments:   h.Enrollments,
		Attendance:    h.Attendance,
		Notifications: h.Notifications,
	}); err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Tutiful",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error(err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   loc.String(),
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Register(app, h)

	port := config.Config("PORT")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

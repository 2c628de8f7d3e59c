package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/middleware"
)

func AnalyticsRoutes(app *fiber.App, h *handlers.Handler) {
	agency := app.Group("/api/v1/analytics/agency", middleware.Protected())
	// the agency check reads :id, so it runs per route rather than on the group
	agency.Get("/:id/revenue-summary", middleware.AgencyAdminRequired(), h.RevenueSummary)
	agency.Get("/:id/revenue-growth", middleware.AgencyAdminRequired(), h.RevenueGrowth)
	agency.Get("/:id/subscription-growth", middleware.AgencyAdminRequired(), h.SubscriptionGrowth)
	agency.Get("/:id/attendance", middleware.AgencyAdminRequired(), h.AttendanceOverview)

	admin := app.Group("/api/v1/analytics/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/revenue-summary", h.AdminRevenueSummary)
	admin.Get("/tutor-payments", h.AdminTutorPayments)
	admin.Get("/agency-stats", h.AdminAgencyStats)
	admin.Get("/platform-fee-transactions", h.AdminPlatformFeeTransactions)
}

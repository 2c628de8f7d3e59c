package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/analytics"
	"github.com/tutiful/tutiful_backend/services"
)

func analyticsError(c *fiber.Ctx, err error) error {
	if isAny(err, services.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}
	return internalError(c, err)
}

func (h *Handler) RevenueSummary(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	summary, err := h.Analytics.RevenueSummary(c.UserContext(), agencyID)
	if err != nil {
		return analyticsError(c, err)
	}
	return c.JSON(summary)
}

// RevenueGrowth accepts ?timeRange=monthly|quarterly|yearly, defaulting to monthly.
func (h *Handler) RevenueGrowth(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	period := analytics.ParsePeriod(c.Query("timeRange", string(analytics.Monthly)))
	series, err := h.Analytics.RevenueGrowth(c.UserContext(), agencyID, period)
	if err != nil {
		return analyticsError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": period, "data": series})
}

func (h *Handler) AttendanceOverview(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	overview, err := h.Analytics.AttendanceOverview(c.UserContext(), agencyID)
	if err != nil {
		return analyticsError(c, err)
	}
	return c.JSON(overview)
}

func (h *Handler) SubscriptionGrowth(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	period := analytics.ParsePeriod(c.Query("timeRange", string(analytics.Monthly)))
	series, err := h.Analytics.SubscriptionGrowth(c.UserContext(), agencyID, period)
	if err != nil {
		return analyticsError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": period, "data": series})
}

// timeRange reads ?timeRange=all_time|today|this_week|this_month|this_year
// for the admin dashboards.
func timeRange(c *fiber.Ctx) analytics.TimeRange {
	return analytics.ParseTimeRange(c.Query("timeRange", string(analytics.AllTime)))
}

func (h *Handler) AdminRevenueSummary(c *fiber.Ctx) error {
	r := timeRange(c)
	summary, err := h.Analytics.AdminRevenueSummary(c.UserContext(), r)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": r, "data": summary})
}

func (h *Handler) AdminTutorPayments(c *fiber.Ctx) error {
	r := timeRange(c)
	list, err := h.Analytics.AdminTutorPayments(c.UserContext(), r)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": r, "data": list})
}

func (h *Handler) AdminAgencyStats(c *fiber.Ctx) error {
	r := timeRange(c)
	list, err := h.Analytics.AdminAgencyStats(c.UserContext(), r)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": r, "data": list})
}

func (h *Handler) AdminPlatformFeeTransactions(c *fiber.Ctx) error {
	r := timeRange(c)
	list, err := h.Analytics.AdminPlatformFeeTransactions(c.UserContext(), r)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"timeRange": r, "data": list})
}

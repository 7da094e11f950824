package handler

import (
	"github.com/gin-gonic/gin"
	appreport "github.com/utilitrack/backend/internal/application/report"
)

// ReportHandler serves the read-only dashboard and report endpoints
type ReportHandler struct {
	BaseHandler
	reportService *appreport.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *appreport.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DashboardSummary returns the headline counters
func (h *ReportHandler) DashboardSummary(c *gin.Context) {
	summary, err := h.reportService.DashboardSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// TodayRevenue returns today's collections per payment method and utility
func (h *ReportHandler) TodayRevenue(c *gin.Context) {
	revenue, err := h.reportService.TodayRevenue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, revenue)
}

// RevenueTrends returns monthly revenue per utility type
func (h *ReportHandler) RevenueTrends(c *gin.Context) {
	months, ok := h.queryInt(c, "months", 0)
	if !ok {
		return
	}
	trends, err := h.reportService.RevenueTrends(c.Request.Context(), months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, trends, len(trends))
}

// UtilityDistribution returns the share of meters per utility type
func (h *ReportHandler) UtilityDistribution(c *gin.Context) {
	shares, err := h.reportService.UtilityDistribution(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, shares, len(shares))
}

// RecentActivity returns the latest readings, bills and payments
func (h *ReportHandler) RecentActivity(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	activity, err := h.reportService.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, activity, len(activity))
}

// UnpaidBills returns open bills, oldest due date first
func (h *ReportHandler) UnpaidBills(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	bills, err := h.reportService.UnpaidBills(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, bills, len(bills))
}

// MonthlyRevenue returns billed and collected amounts per month of a year
func (h *ReportHandler) MonthlyRevenue(c *gin.Context) {
	year, ok := h.queryInt(c, "year", 0)
	if !ok {
		return
	}
	revenue, err := h.reportService.MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, revenue, len(revenue))
}

// ActiveConnections returns meter counts per utility type and status
func (h *ReportHandler) ActiveConnections(c *gin.Context) {
	connections, err := h.reportService.ActiveConnections(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, connections)
}

// Defaulters returns customers with bills overdue for at least days_overdue days
func (h *ReportHandler) Defaulters(c *gin.Context) {
	days, ok := h.queryInt(c, "days_overdue", 0)
	if !ok {
		return
	}
	defaulters, err := h.reportService.Defaulters(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, defaulters, len(defaulters))
}

// PaymentHistory returns payments between from and to
func (h *ReportHandler) PaymentHistory(c *gin.Context) {
	var filter appreport.PaymentHistoryFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	history, err := h.reportService.PaymentHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// ConsumptionTrends returns monthly consumption per utility type
func (h *ReportHandler) ConsumptionTrends(c *gin.Context) {
	months, ok := h.queryInt(c, "months", 0)
	if !ok {
		return
	}
	trends, err := h.reportService.ConsumptionTrends(c.Request.Context(), months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, trends, len(trends))
}

// CollectionEfficiency returns collected over billed per month
func (h *ReportHandler) CollectionEfficiency(c *gin.Context) {
	months, ok := h.queryInt(c, "months", 0)
	if !ok {
		return
	}
	efficiency, err := h.reportService.CollectionEfficiency(c.Request.Context(), months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithCount(c, efficiency, len(efficiency))
}

// ReadingStats returns reading counts and consumption per utility type
func (h *ReportHandler) ReadingStats(c *gin.Context) {
	stats, err := h.reportService.ReadingStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

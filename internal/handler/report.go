package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// ReportHandler handles HTTP requests for dashboards and reports.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DashboardResponse summarizes the current month.
type DashboardResponse struct {
	Year             int                     `json:"year"`
	Month            int                     `json:"month"`
	VehiclesByStatus map[string]int          `json:"vehicles_by_status"`
	TripsByStatus    map[string]int          `json:"trips_by_status"`
	OdometerMonth    []OdometerEntryResponse `json:"odometer_month"`
}

// OdometerEntryResponse is one monthly odometer accumulation row.
type OdometerEntryResponse struct {
	VehicleID  string    `json:"vehicle_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Kilometers int       `json:"kilometers"`
	CreatedAt  time.Time `json:"created_at"`
}

func toOdometerEntries(entries []*domain.MonthlyOdometer) []OdometerEntryResponse {
	responses := make([]OdometerEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = OdometerEntryResponse{
			VehicleID:  entry.VehicleID,
			Year:       entry.Year,
			Month:      entry.Month,
			Kilometers: entry.Kilometers,
			CreatedAt:  entry.CreatedAt,
		}
	}
	return responses
}

// GetDashboard handles GET /v1/reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.reportService.BuildDashboard(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	vehicles := make(map[string]int, len(dashboard.VehiclesByStatus))
	for status, count := range dashboard.VehiclesByStatus {
		vehicles[string(status)] = count
	}
	trips := make(map[string]int, len(dashboard.TripsByStatus))
	for status, count := range dashboard.TripsByStatus {
		trips[string(status)] = count
	}

	respondJSON(c, http.StatusOK, DashboardResponse{
		Year:             dashboard.Year,
		Month:            dashboard.Month,
		VehiclesByStatus: vehicles,
		TripsByStatus:    trips,
		OdometerMonth:    toOdometerEntries(dashboard.OdometerMonth),
	})
}

// GetOdometerReport handles GET /v1/reports/odometer
func (h *ReportHandler) GetOdometerReport(c *gin.Context) {
	var year, month int
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'year'"})
			return
		}
		year = v
	}
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'month'"})
			return
		}
		month = v
	}

	entries, err := h.reportService.MonthlyOdometerReport(
		c.Request.Context(), principalFrom(c), c.Query("vehicle_id"), year, month)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOdometerEntries(entries))
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// FuelLogHandler handles HTTP requests for fuel logs.
type FuelLogHandler struct {
	fuelLogService *service.FuelLogService
}

// NewFuelLogHandler creates a new FuelLogHandler.
func NewFuelLogHandler(fuelLogService *service.FuelLogService) *FuelLogHandler {
	return &FuelLogHandler{fuelLogService: fuelLogService}
}

// CreateFuelLogRequest is the HTTP request body for recording a fuel fill.
type CreateFuelLogRequest struct {
	TenantID    string    `json:"tenant_id,omitempty"`
	VehicleID   string    `json:"vehicle_id"`
	DriverID    string    `json:"driver_id"`
	FilledAt    time.Time `json:"filled_at"`
	Liters      float64   `json:"liters"`
	FuelStation string    `json:"fuel_station,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// FuelLogResponse is the HTTP representation of a fuel log.
type FuelLogResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	VehicleID   string    `json:"vehicle_id"`
	DriverID    string    `json:"driver_id"`
	FilledAt    time.Time `json:"filled_at"`
	Liters      float64   `json:"liters"`
	FuelStation string    `json:"fuel_station,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFuelLogResponse(log *domain.FuelLog) FuelLogResponse {
	return FuelLogResponse{
		ID:          log.ID,
		TenantID:    log.TenantID,
		VehicleID:   log.VehicleID,
		DriverID:    log.DriverID,
		FilledAt:    log.FilledAt,
		Liters:      log.Liters,
		FuelStation: log.FuelStation,
		Notes:       log.Notes,
		CreatedAt:   log.CreatedAt,
	}
}

// CreateFuelLog handles POST /v1/fuel-logs
func (h *FuelLogHandler) CreateFuelLog(c *gin.Context) {
	var req CreateFuelLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	log, err := h.fuelLogService.CreateFuelLog(c.Request.Context(), principalFrom(c), service.CreateFuelLogInput{
		TenantID:    req.TenantID,
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		FilledAt:    req.FilledAt,
		Liters:      req.Liters,
		FuelStation: req.FuelStation,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toFuelLogResponse(log))
}

// ListFuelLogs handles GET /v1/fuel-logs
func (h *FuelLogHandler) ListFuelLogs(c *gin.Context) {
	filter := repository.FuelLogFilter{
		VehicleID: c.Query("vehicle_id"),
		DriverID:  c.Query("driver_id"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'from' timestamp"})
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid 'to' timestamp"})
			return
		}
		filter.To = t
	}

	logs, err := h.fuelLogService.ListFuelLogs(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]FuelLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = toFuelLogResponse(log)
	}
	respondJSON(c, http.StatusOK, responses)
}

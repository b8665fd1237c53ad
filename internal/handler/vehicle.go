package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// VehicleHandler handles HTTP requests for the vehicle registry.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// CreateVehicleRequest is the HTTP request body for registering a vehicle.
type CreateVehicleRequest struct {
	TenantID             string     `json:"tenant_id,omitempty"`
	LicensePlate         string     `json:"license_plate"`
	Model                string     `json:"model"`
	Brand                string     `json:"brand"`
	Year                 int        `json:"year"`
	MaxPassengers        int        `json:"max_passengers"`
	OdometerInitial      int        `json:"odometer_initial"`
	OdometerMonthlyLimit int        `json:"odometer_monthly_limit,omitempty"`
	LastServiceDate      *time.Time `json:"last_service_date,omitempty"`
	NextServiceDate      *time.Time `json:"next_service_date,omitempty"`
}

// SetVehicleStatusRequest is the HTTP request body for a status change.
type SetVehicleStatusRequest struct {
	Status string `json:"status"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenant_id"`
	LicensePlate         string     `json:"license_plate"`
	Model                string     `json:"model"`
	Brand                string     `json:"brand"`
	Year                 int        `json:"year"`
	MaxPassengers        int        `json:"max_passengers"`
	OdometerCurrent      int        `json:"odometer_current"`
	OdometerInitial      int        `json:"odometer_initial"`
	OdometerMonthlyLimit int        `json:"odometer_monthly_limit,omitempty"`
	LastServiceDate      *time.Time `json:"last_service_date,omitempty"`
	NextServiceDate      *time.Time `json:"next_service_date,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func toVehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	response := VehicleResponse{
		ID:                   vehicle.ID,
		TenantID:             vehicle.TenantID,
		LicensePlate:         vehicle.LicensePlate,
		Model:                vehicle.Model,
		Brand:                vehicle.Brand,
		Year:                 vehicle.Year,
		MaxPassengers:        vehicle.MaxPassengers,
		OdometerCurrent:      vehicle.OdometerCurrent,
		OdometerInitial:      vehicle.OdometerInitial,
		OdometerMonthlyLimit: vehicle.OdometerMonthlyLimit,
		Status:               string(vehicle.Status),
		CreatedAt:            vehicle.CreatedAt,
		UpdatedAt:            vehicle.UpdatedAt,
	}
	if !vehicle.LastServiceDate.IsZero() {
		last := vehicle.LastServiceDate
		response.LastServiceDate = &last
	}
	if !vehicle.NextServiceDate.IsZero() {
		next := vehicle.NextServiceDate
		response.NextServiceDate = &next
	}
	return response
}

// CreateVehicle handles POST /v1/vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input := service.CreateVehicleInput{
		TenantID:             req.TenantID,
		LicensePlate:         req.LicensePlate,
		Model:                req.Model,
		Brand:                req.Brand,
		Year:                 req.Year,
		MaxPassengers:        req.MaxPassengers,
		OdometerInitial:      req.OdometerInitial,
		OdometerMonthlyLimit: req.OdometerMonthlyLimit,
	}
	if req.LastServiceDate != nil {
		input.LastServiceDate = *req.LastServiceDate
	}
	if req.NextServiceDate != nil {
		input.NextServiceDate = *req.NextServiceDate
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), principalFrom(c), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		responses[i] = toVehicleResponse(vehicle)
	}
	respondJSON(c, http.StatusOK, responses)
}

// SetVehicleStatus handles PUT /v1/vehicles/:id/status
func (h *VehicleHandler) SetVehicleStatus(c *gin.Context) {
	var req SetVehicleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.vehicleService.SetVehicleStatus(
		c.Request.Context(), principalFrom(c), c.Param("id"), domain.VehicleStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// DriverHandler handles HTTP requests for the driver directory.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	TenantID          string     `json:"tenant_id,omitempty"`
	Name              string     `json:"name"`
	CPF               string     `json:"cpf"`
	CNHNumber         string     `json:"cnh_number"`
	CNHCategory       string     `json:"cnh_category"`
	CNHExpirationDate *time.Time `json:"cnh_expiration_date,omitempty"`
	Phone             string     `json:"phone,omitempty"`
}

// SetDriverStatusRequest is the HTTP request body for a status change.
type SetDriverStatusRequest struct {
	Status string `json:"status"`
}

// DriverResponse is the HTTP representation of a driver. The access
// code is only returned on registration.
type DriverResponse struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenant_id"`
	Name              string     `json:"name"`
	CPF               string     `json:"cpf"`
	CNHNumber         string     `json:"cnh_number"`
	CNHCategory       string     `json:"cnh_category"`
	CNHExpirationDate *time.Time `json:"cnh_expiration_date,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Status            string     `json:"status"`
	AccessCode        string     `json:"access_code,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toDriverResponse(driver *domain.Driver, includeAccessCode bool) DriverResponse {
	response := DriverResponse{
		ID:          driver.ID,
		TenantID:    driver.TenantID,
		Name:        driver.Name,
		CPF:         driver.CPF,
		CNHNumber:   driver.CNHNumber,
		CNHCategory: driver.CNHCategory,
		Phone:       driver.Phone,
		Status:      string(driver.Status),
		CreatedAt:   driver.CreatedAt,
		UpdatedAt:   driver.UpdatedAt,
	}
	if !driver.CNHExpirationDate.IsZero() {
		expiration := driver.CNHExpirationDate
		response.CNHExpirationDate = &expiration
	}
	if includeAccessCode {
		response.AccessCode = driver.AccessCode
	}
	return response
}

// RegisterDriver handles POST /v1/drivers
func (h *DriverHandler) RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input := service.RegisterDriverInput{
		TenantID:    req.TenantID,
		Name:        req.Name,
		CPF:         req.CPF,
		CNHNumber:   req.CNHNumber,
		CNHCategory: req.CNHCategory,
		Phone:       req.Phone,
	}
	if req.CNHExpirationDate != nil {
		input.CNHExpirationDate = *req.CNHExpirationDate
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver, true))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver, false))
}

// ListDrivers handles GET /v1/drivers
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.driverService.ListDrivers(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]DriverResponse, len(drivers))
	for i, driver := range drivers {
		responses[i] = toDriverResponse(driver, false)
	}
	respondJSON(c, http.StatusOK, responses)
}

// SetDriverStatus handles PUT /v1/drivers/:id/status
func (h *DriverHandler) SetDriverStatus(c *gin.Context) {
	var req SetDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.driverService.SetDriverStatus(
		c.Request.Context(), principalFrom(c), c.Param("id"), domain.DriverStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

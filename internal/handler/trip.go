package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// PassengerRequest is one manifest entry in a trip request body.
type PassengerRequest struct {
	Name             string `json:"name"`
	CPF              string `json:"cpf,omitempty"`
	Age              any    `json:"age,omitempty"`
	SpecialNeed      string `json:"special_need,omitempty"`
	SpecialNeedOther string `json:"special_need_other,omitempty"`
	Observation      string `json:"observation,omitempty"`
}

// CreateTripRequest is the HTTP request body for booking a trip.
type CreateTripRequest struct {
	TenantID               string             `json:"tenant_id,omitempty"`
	VehicleID              string             `json:"vehicle_id"`
	DriverID               string             `json:"driver_id"`
	Origin                 string             `json:"origin"`
	Destination            string             `json:"destination"`
	DepartureDatetime      time.Time          `json:"departure_datetime"`
	ReturnDatetimeExpected time.Time          `json:"return_datetime_expected"`
	ReturnDatetimeActual   *time.Time         `json:"return_datetime_actual,omitempty"`
	OdometerStart          int                `json:"odometer_start"`
	OdometerEnd            *int               `json:"odometer_end,omitempty"`
	Category               string             `json:"category,omitempty"`
	PassengersCount        int                `json:"passengers_count,omitempty"`
	Passengers             []PassengerRequest `json:"passengers_details,omitempty"`
	CargoDescription       string             `json:"cargo_description,omitempty"`
	CargoSize              string             `json:"cargo_size,omitempty"`
	CargoQuantity          int                `json:"cargo_quantity,omitempty"`
	CargoPurpose           string             `json:"cargo_purpose,omitempty"`
	StopsDescription       string             `json:"stops_description,omitempty"`
	Notes                  string             `json:"notes,omitempty"`
	Status                 string             `json:"status,omitempty"`
}

// UpdateTripRequest is the HTTP request body for a partial trip update.
// Absent fields keep their stored values.
type UpdateTripRequest struct {
	VehicleID              *string            `json:"vehicle_id,omitempty"`
	DriverID               *string            `json:"driver_id,omitempty"`
	Origin                 *string            `json:"origin,omitempty"`
	Destination            *string            `json:"destination,omitempty"`
	DepartureDatetime      *time.Time         `json:"departure_datetime,omitempty"`
	ReturnDatetimeExpected *time.Time         `json:"return_datetime_expected,omitempty"`
	ReturnDatetimeActual   *time.Time         `json:"return_datetime_actual,omitempty"`
	OdometerStart          *int               `json:"odometer_start,omitempty"`
	OdometerEnd            *int               `json:"odometer_end,omitempty"`
	Category               *string            `json:"category,omitempty"`
	PassengersCount        *int               `json:"passengers_count,omitempty"`
	Passengers             []PassengerRequest `json:"passengers_details,omitempty"`
	CargoDescription       *string            `json:"cargo_description,omitempty"`
	CargoSize              *string            `json:"cargo_size,omitempty"`
	CargoQuantity          *int               `json:"cargo_quantity,omitempty"`
	CargoPurpose           *string            `json:"cargo_purpose,omitempty"`
	StopsDescription       *string            `json:"stops_description,omitempty"`
	Notes                  *string            `json:"notes,omitempty"`
	Status                 *string            `json:"status,omitempty"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID                     string             `json:"id"`
	TenantID               string             `json:"tenant_id"`
	VehicleID              string             `json:"vehicle_id"`
	DriverID               string             `json:"driver_id"`
	Origin                 string             `json:"origin"`
	Destination            string             `json:"destination"`
	DepartureDatetime      time.Time          `json:"departure_datetime"`
	ReturnDatetimeExpected time.Time          `json:"return_datetime_expected"`
	ReturnDatetimeActual   *time.Time         `json:"return_datetime_actual,omitempty"`
	OdometerStart          int                `json:"odometer_start"`
	OdometerEnd            *int               `json:"odometer_end,omitempty"`
	Category               string             `json:"category"`
	PassengersCount        int                `json:"passengers_count"`
	Passengers             []domain.Passenger `json:"passengers_details,omitempty"`
	CargoDescription       string             `json:"cargo_description,omitempty"`
	CargoSize              string             `json:"cargo_size,omitempty"`
	CargoQuantity          int                `json:"cargo_quantity,omitempty"`
	CargoPurpose           string             `json:"cargo_purpose,omitempty"`
	StopsDescription       string             `json:"stops_description,omitempty"`
	Status                 string             `json:"status"`
	Notes                  string             `json:"notes,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// DriverBriefingResponse carries the composed driver message and the
// WhatsApp deep link for it.
type DriverBriefingResponse struct {
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	response := TripResponse{
		ID:                     trip.ID,
		TenantID:               trip.TenantID,
		VehicleID:              trip.VehicleID,
		DriverID:               trip.DriverID,
		Origin:                 trip.Origin,
		Destination:            trip.Destination,
		DepartureDatetime:      trip.DepartureDatetime,
		ReturnDatetimeExpected: trip.ReturnDatetimeExpected,
		OdometerStart:          trip.OdometerStart,
		OdometerEnd:            trip.OdometerEnd,
		Category:               string(trip.Category),
		PassengersCount:        trip.PassengersCount,
		Passengers:             trip.Passengers,
		CargoDescription:       trip.CargoDescription,
		CargoSize:              trip.CargoSize,
		CargoQuantity:          trip.CargoQuantity,
		CargoPurpose:           trip.CargoPurpose,
		StopsDescription:       trip.StopsDescription,
		Status:                 string(trip.Status),
		Notes:                  trip.Notes,
		CreatedAt:              trip.CreatedAt,
		UpdatedAt:              trip.UpdatedAt,
	}
	if !trip.ReturnDatetimeActual.IsZero() {
		actual := trip.ReturnDatetimeActual
		response.ReturnDatetimeActual = &actual
	}
	return response
}

func toPassengerInputs(passengers []PassengerRequest) []service.PassengerInput {
	if passengers == nil {
		return nil
	}
	inputs := make([]service.PassengerInput, len(passengers))
	for i, p := range passengers {
		inputs[i] = service.PassengerInput{
			Name:             p.Name,
			CPF:              p.CPF,
			Age:              p.Age,
			SpecialNeed:      p.SpecialNeed,
			SpecialNeedOther: p.SpecialNeedOther,
			Observation:      p.Observation,
		}
	}
	return inputs
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input := service.CreateTripInput{
		TenantID:               req.TenantID,
		VehicleID:              req.VehicleID,
		DriverID:               req.DriverID,
		Origin:                 req.Origin,
		Destination:            req.Destination,
		DepartureDatetime:      req.DepartureDatetime,
		ReturnDatetimeExpected: req.ReturnDatetimeExpected,
		OdometerStart:          req.OdometerStart,
		OdometerEnd:            req.OdometerEnd,
		Category:               domain.TripCategory(req.Category),
		PassengersCount:        req.PassengersCount,
		Passengers:             toPassengerInputs(req.Passengers),
		CargoDescription:       req.CargoDescription,
		CargoSize:              req.CargoSize,
		CargoQuantity:          req.CargoQuantity,
		CargoPurpose:           req.CargoPurpose,
		StopsDescription:       req.StopsDescription,
		Notes:                  req.Notes,
		Status:                 domain.TripStatus(req.Status),
	}
	if req.ReturnDatetimeActual != nil {
		input.ReturnDatetimeActual = *req.ReturnDatetimeActual
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// UpdateTrip handles PATCH /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	tripID := c.Param("id")

	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input := service.UpdateTripInput{
		VehicleID:              req.VehicleID,
		DriverID:               req.DriverID,
		Origin:                 req.Origin,
		Destination:            req.Destination,
		DepartureDatetime:      req.DepartureDatetime,
		ReturnDatetimeExpected: req.ReturnDatetimeExpected,
		ReturnDatetimeActual:   req.ReturnDatetimeActual,
		OdometerStart:          req.OdometerStart,
		OdometerEnd:            req.OdometerEnd,
		PassengersCount:        req.PassengersCount,
		Passengers:             toPassengerInputs(req.Passengers),
		CargoDescription:       req.CargoDescription,
		CargoSize:              req.CargoSize,
		CargoQuantity:          req.CargoQuantity,
		CargoPurpose:           req.CargoPurpose,
		StopsDescription:       req.StopsDescription,
		Notes:                  req.Notes,
	}
	if req.Category != nil {
		category := domain.TripCategory(*req.Category)
		input.Category = &category
	}
	if req.Status != nil {
		status := domain.TripStatus(*req.Status)
		input.Status = &status
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), principalFrom(c), tripID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListTrips handles GET /v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	filter := repository.TripFilter{
		VehicleID: c.Query("vehicle_id"),
		DriverID:  c.Query("driver_id"),
		Status:    domain.TripStatus(c.Query("status")),
		Category:  domain.TripCategory(c.Query("category")),
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

	trips, err := h.tripService.ListTrips(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, len(trips))
	for i, trip := range trips {
		responses[i] = toTripResponse(trip)
	}
	respondJSON(c, http.StatusOK, responses)
}

// GetVehicleSchedule handles GET /v1/vehicles/:id/schedule and returns
// the vehicle's active trips.
func (h *TripHandler) GetVehicleSchedule(c *gin.Context) {
	trips, err := h.tripService.ListActiveTripsForVehicle(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TripResponse, len(trips))
	for i, trip := range trips {
		responses[i] = toTripResponse(trip)
	}
	respondJSON(c, http.StatusOK, responses)
}

// GetDriverBriefing handles GET /v1/trips/:id/briefing
func (h *TripHandler) GetDriverBriefing(c *gin.Context) {
	briefing, err := h.tripService.BuildDriverBriefing(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DriverBriefingResponse{
		Message:      briefing.Message,
		WhatsAppLink: briefing.WhatsAppLink,
	})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// ErrorResponse represents an error response. Fields carries the
// offending manifest/cargo fields for validation errors, and
// ConflictingTripID identifies the blocking trip for schedule conflicts.
type ErrorResponse struct {
	Error             string   `json:"error"`
	Fields            []string `json:"fields,omitempty"`
	ConflictingTripID string   `json:"conflicting_trip_id,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	var manifestErr *service.ManifestError
	if errors.As(err, &manifestErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid manifest",
			Fields: manifestErr.Fields,
		})
		return
	}

	var conflictErr *service.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:             conflictErr.Error(),
			ConflictingTripID: conflictErr.ConflictingTripID,
		})
		return
	}

	c.JSON(mapErrorToHTTPStatus(err), ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrReturnBeforeDeparture),
		errors.Is(err, service.ErrIncompleteOdometerData),
		errors.Is(err, service.ErrTenantMismatch):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrVehicleBusy),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrScheduleOverlap):
		return http.StatusConflict

	// Forbidden
	case errors.Is(err, service.ErrCrossTenantViolation),
		errors.Is(err, service.ErrReadOnlyRole):
		return http.StatusForbidden

	// Internal-consistency breach: the completion gate was bypassed.
	case errors.Is(err, service.ErrNegativeDistance):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// principalFrom pulls the authenticated principal stashed by the auth
// middleware.
func principalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get("principal"); ok {
		if principal, ok := v.(domain.Principal); ok {
			return principal
		}
	}
	return domain.Principal{}
}

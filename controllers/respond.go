package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-backend/services"
	"attendance-backend/utils"
)

// respondServiceError maps expected service outcomes to HTTP codes. Anything
// unmapped is an infrastructure failure and surfaces as a generic 500.
func respondServiceError(c *gin.Context, err error) {
	var already *services.AlreadyVerifiedError
	if errors.As(err, &already) {
		c.JSON(http.StatusConflict, gin.H{
			"success":     false,
			"error":       "attendance_already_verified",
			"status":      already.Status,
			"verifier_id": already.VerifierID,
			"verified_at": already.VerifiedAt,
		})
		return
	}

	var geo *services.GeofenceError
	if errors.As(err, &geo) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":         false,
			"error":           "outside_geofence",
			"distance_meters": geo.DistanceMeters,
			"radius_meters":   geo.RadiusMeters,
		})
		return
	}

	var window *services.TimeWindowError
	if errors.As(err, &window) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":      false,
			"error":        "outside_time_window",
			"window_start": window.WindowStart,
			"window_end":   window.WindowEnd,
		})
		return
	}

	switch {
	case errors.Is(err, utils.ErrInvalidQRPayload),
		errors.Is(err, services.ErrInvalidAppealMessage),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrMissingDisputeNote),
		errors.Is(err, services.ErrInvalidEventTimes):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrAttendanceNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateAttendance),
		errors.Is(err, services.ErrAlreadyCheckedOut),
		errors.Is(err, services.ErrWrongStatus),
		errors.Is(err, services.ErrEventNotActive),
		errors.Is(err, services.ErrEventCompleted),
		errors.Is(err, services.ErrEmailTaken):
		utils.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotRecordOwner):
		utils.JSONError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserInactive):
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error")
	}
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-backend/middleware"
	"attendance-backend/models"
	"attendance-backend/services"
	"attendance-backend/utils"
)

type AttendanceController struct {
	Attendance *services.AttendanceService
}

func NewAttendanceController(svc *services.AttendanceService) *AttendanceController {
	return &AttendanceController{Attendance: svc}
}

type submitPayload struct {
	Token         string  `json:"token" binding:"required"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	FrontPhotoURL string  `json:"front_photo_url" binding:"required"`
	BackPhotoURL  string  `json:"back_photo_url" binding:"required"`
	SignatureURL  string  `json:"signature_url" binding:"required"`
}

func (tc *AttendanceController) Submit(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	var payload submitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	rec, err := tc.Attendance.Submit(actor, services.SubmitAttendanceInput{
		Token:         payload.Token,
		Latitude:      payload.Latitude,
		Longitude:     payload.Longitude,
		FrontPhotoURL: payload.FrontPhotoURL,
		BackPhotoURL:  payload.BackPhotoURL,
		SignatureURL:  payload.SignatureURL,
		IP:            c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rec)
}

type checkOutPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (tc *AttendanceController) CheckOut(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload checkOutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	rec, err := tc.Attendance.CheckOut(actor, id, services.CheckOutInput{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rec)
}

type verifyPayload struct {
	Decision    models.VerificationStatus `json:"decision" binding:"required"`
	DisputeNote string                    `json:"dispute_note"`
}

func (tc *AttendanceController) Verify(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload verifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	rec, err := tc.Attendance.Verify(actor, id, payload.Decision, payload.DisputeNote, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rec)
}

type appealPayload struct {
	Message string `json:"message" binding:"required"`
}

func (tc *AttendanceController) Appeal(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload appealPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	rec, err := tc.Attendance.Appeal(actor, id, payload.Message, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rec)
}

func (tc *AttendanceController) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	filter := services.AttendanceFilter{
		Status: models.VerificationStatus(c.Query("status")),
	}
	if raw := c.Query("event_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.EventID = uint(id)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}

	recs, err := tc.Attendance.List(actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, recs)
}

// Stats powers the per-event dashboard tiles.
func (tc *AttendanceController) Stats(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	counts, err := tc.Attendance.StatusCounts(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, counts)
}

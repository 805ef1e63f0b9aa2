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

type EventController struct {
	Events *services.EventService
}

func NewEventController(svc *services.EventService) *EventController {
	return &EventController{Events: svc}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (ec *EventController) ListEvents(c *gin.Context) {
	status := models.EventStatus(c.Query("status"))
	events, err := ec.Events.List(status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, events)
}

func (ec *EventController) GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ev, err := ec.Events.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ev)
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	var payload services.EventInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	ev, err := ec.Events.Create(actor, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, ev)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload services.EventInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	ev, err := ec.Events.Update(actor, id, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ev)
}

type eventStatusPayload struct {
	Status models.EventStatus `json:"status" binding:"required"`
}

func (ec *EventController) UpdateEventStatus(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload eventStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	ev, err := ec.Events.SetStatus(actor, id, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ev)
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ec.Events.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// IssueQR returns a fresh check-in token for display at the venue.
func (ec *EventController) IssueQR(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	token, err := ec.Events.IssueQRToken(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"token": token})
}

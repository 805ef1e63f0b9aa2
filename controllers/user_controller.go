package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-backend/middleware"
	"attendance-backend/models"
	"attendance-backend/services"
	"attendance-backend/utils"
)

type UserController struct {
	Users *services.UserService
	Audit services.AuditRecorder
}

func NewUserController(users *services.UserService, audit services.AuditRecorder) *UserController {
	return &UserController{Users: users, Audit: audit}
}

type setRolePayload struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (uc *UserController) SetRole(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload setRolePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := uc.Users.SetRole(actor, id, payload.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	uc.Audit.Record("user.set_role", &actor.ID, "user", user.ID, map[string]interface{}{
		"role": payload.Role,
	}, c.ClientIP(), c.Request.UserAgent())
	utils.JSONSuccess(c, http.StatusOK, user)
}

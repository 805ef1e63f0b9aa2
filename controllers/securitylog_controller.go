package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance-backend/services"
	"attendance-backend/utils"
)

type SecurityLogController struct {
	Logs *services.SecurityLogService
}

func NewSecurityLogController(svc *services.SecurityLogService) *SecurityLogController {
	return &SecurityLogController{Logs: svc}
}

func (sc *SecurityLogController) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	entries, err := sc.Logs.List(limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, entries)
}

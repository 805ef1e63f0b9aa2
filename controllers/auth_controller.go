package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-backend/services"
	"attendance-backend/utils"
)

type AuthController struct {
	Users     *services.UserService
	Audit     services.AuditRecorder
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthController(users *services.UserService, audit services.AuditRecorder, jwtSecret string) *AuthController {
	return &AuthController{
		Users:     users,
		Audit:     audit,
		JWTSecret: jwtSecret,
		TokenTTL:  24 * time.Hour,
	}
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var payload services.RegisterInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := ac.Users.Register(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ac.Audit.Record("auth.register", &user.ID, "user", user.ID, nil, c.ClientIP(), c.Request.UserAgent())
	utils.JSONSuccess(c, http.StatusCreated, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := ac.Users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		ac.Audit.Record("auth.login_failed", nil, "user", 0, map[string]interface{}{
			"email": payload.Email,
		}, c.ClientIP(), c.Request.UserAgent())
		respondServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(ac.JWTSecret, user.ID, user.Role, ac.TokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	ac.Audit.Record("auth.login", &user.ID, "user", user.ID, nil, c.ClientIP(), c.Request.UserAgent())
	utils.JSONSuccess(c, http.StatusOK, gin.H{"token": token, "user": user})
}

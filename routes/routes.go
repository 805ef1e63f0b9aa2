package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"attendance-backend/config"
	"attendance-backend/controllers"
	"attendance-backend/middleware"
	"attendance-backend/models"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	ac *controllers.AuthController,
	uc *controllers.UserController,
	ec *controllers.EventController,
	tc *controllers.AttendanceController,
	sc *controllers.SecurityLogController,
	jwtSecret string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authLimiter := middleware.NewSlidingWindowLimiter(config.DefaultAuthAttemptLimit, config.DefaultAuthAttemptWindow)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimitAuth(authLimiter))
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)
		}

		events := api.Group("/events")
		events.Use(middleware.RequireAuth(jwtSecret))
		{
			events.GET("", ec.ListEvents)
			events.GET("/:id", ec.GetEvent)
			events.GET("/:id/attendance/stats", tc.Stats)

			staff := events.Group("")
			staff.Use(middleware.RequireRole(models.RoleModerator, models.RoleAdmin))
			{
				staff.POST("", ec.CreateEvent)
				staff.PUT("/:id", ec.UpdateEvent)
				staff.PATCH("/:id/status", ec.UpdateEventStatus)
				staff.DELETE("/:id", ec.DeleteEvent)
				staff.GET("/:id/qr", ec.IssueQR)
			}
		}

		attendance := api.Group("/attendance")
		attendance.Use(middleware.RequireAuth(jwtSecret))
		{
			attendance.POST("", tc.Submit)
			attendance.GET("", tc.List)
			attendance.POST("/:id/checkout", tc.CheckOut)
			attendance.POST("/:id/appeal", tc.Appeal)
			attendance.POST("/:id/verify",
				middleware.RequireRole(models.RoleModerator, models.RoleAdmin), tc.Verify)
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth(jwtSecret), middleware.RequireRole(models.RoleAdmin))
		{
			users.PATCH("/:id/role", uc.SetRole)
		}

		logs := api.Group("/security-logs")
		logs.Use(middleware.RequireAuth(jwtSecret), middleware.RequireRole(models.RoleAdmin))
		{
			logs.GET("", sc.List)
		}
	}

	return r
}

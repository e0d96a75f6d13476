package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/dashboard"
	"github.com/bigdiet/backend/pkg/response"
)

func RegisterDashboardRoutes(r gin.IRouter, svc *dashboard.Service) {
	r.GET("/dashboard/stats", func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	})
}

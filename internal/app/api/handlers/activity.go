package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/activity"
	"github.com/bigdiet/backend/pkg/response"
)

func RegisterActivityRoutes(r gin.IRouter, svc *activity.Service) {
	r.GET("/activities", func(c *gin.Context) {
		month, _ := strconv.Atoi(c.Query("month"))
		year, _ := strconv.Atoi(c.Query("year"))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

		feed, err := svc.Feed(c.Request.Context(), month, year, page, limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(feed))
	})
}

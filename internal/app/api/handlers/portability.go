package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/portability"
	"github.com/bigdiet/backend/pkg/response"
)

func RegisterPortabilityRoutes(r gin.IRouter, svc *portability.Service) {
	r.GET("/export", func(c *gin.Context) {
		data, err := svc.Export(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="bigdiet-snapshot.json"`)
		c.Data(http.StatusOK, "application/json", data)
	})

	r.POST("/import", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.Import(c.Request.Context(), data); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})

	r.GET("/size", func(c *gin.Context) {
		size, err := svc.Size(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(size))
	})
}

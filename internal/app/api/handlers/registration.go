package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/registration"
	"github.com/bigdiet/backend/pkg/response"
)

type addRegistrationRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	Meals      int    `json:"meals"`
	Snacks     int    `json:"snacks"`
	Notes      string `json:"notes"`
}

func RegisterRegistrationRoutes(r gin.IRouter, svc *registration.Service) {
	r.POST("/registrations", func(c *gin.Context) {
		var req addRegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		reg, err := svc.Add(c.Request.Context(), req.CustomerID, req.Meals, req.Snacks, req.Notes)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(reg))
	})

	r.GET("/registrations", func(c *gin.Context) {
		if date := c.Query("date"); date != "" {
			regs, err := svc.ListByDate(c.Request.Context(), date)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, response.OKT(regs))
			return
		}
		regs, err := svc.ListToday(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(regs))
	})

	r.GET("/customers/:phone/registrations", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		regs, err := svc.ListByCustomer(c.Request.Context(), c.Param("phone"), limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(regs))
	})

	r.DELETE("/registrations/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/pkg/response"
)

type addCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

type updateCustomerRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

func RegisterCustomerRoutes(r gin.IRouter, svc *customer.Service) {
	r.POST("/customers", func(c *gin.Context) {
		var req addCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		id, err := svc.AddCustomer(c.Request.Context(), req.Name, req.Phone)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"id": id}))
	})

	r.GET("/customers", func(c *gin.Context) {
		if q := c.Query("q"); q != "" {
			customers, err := svc.Search(c.Request.Context(), q)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, response.OKT(customers))
			return
		}
		customers, err := svc.GetCustomers(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(customers))
	})

	r.GET("/customers/:phone", func(c *gin.Context) {
		cust, err := svc.GetCustomerByPhone(c.Request.Context(), c.Param("phone"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(cust))
	})

	r.PATCH("/customers/:phone", func(c *gin.Context) {
		var req updateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.UpdateCustomer(c.Request.Context(), c.Param("phone"), req.Fields); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})

	r.DELETE("/customers/:phone", func(c *gin.Context) {
		if err := svc.DeleteCustomer(c.Request.Context(), c.Param("phone")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})
}

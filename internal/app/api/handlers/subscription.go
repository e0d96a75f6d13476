package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/subscription"
	"github.com/bigdiet/backend/pkg/response"
)

type addSubscriptionRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	PackageID  string `json:"packageId" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate"`
	HasSnacks  bool   `json:"hasSnacks"`
}

type updateSubscriptionRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subscription.Service) {
	r.POST("/subscriptions", func(c *gin.Context) {
		var req addSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := svc.CreateFromPackage(c.Request.Context(), req.CustomerID, req.PackageID, req.StartDate, req.EndDate, req.HasSnacks)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	})

	r.GET("/subscriptions", func(c *gin.Context) {
		if q := c.Query("q"); q != "" {
			subs, err := svc.Search(c.Request.Context(), q)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, response.OKT(subs))
			return
		}
		subs, err := svc.GetSubscriptions(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	})

	r.GET("/customers/:phone/subscription", func(c *gin.Context) {
		sub, err := svc.ActiveByCustomer(c.Request.Context(), c.Param("phone"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	})

	r.PATCH("/subscriptions/:id", func(c *gin.Context) {
		var req updateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.UpdateSubscription(c.Request.Context(), c.Param("id"), req.Fields); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})

	r.DELETE("/subscriptions/:id", func(c *gin.Context) {
		if err := svc.DeleteSubscription(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})

	r.POST("/subscriptions/expire-sweep", func(c *gin.Context) {
		n, err := svc.CheckAndExpire(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"expired": n}))
	})
}

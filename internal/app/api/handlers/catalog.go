package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/pkg/response"
)

type addPackageRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price"`
	Meals       int     `json:"meals" binding:"required"`
	HasSnacks   bool    `json:"hasSnacks"`
	Description string  `json:"description"`
}

type updatePackageRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

func RegisterCatalogRoutes(r gin.IRouter, svc *catalog.Service) {
	r.POST("/packages", func(c *gin.Context) {
		var req addPackageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		pkg, err := svc.AddPackage(c.Request.Context(), catalog.AddPackageParams{
			Name:        req.Name,
			Price:       req.Price,
			Meals:       req.Meals,
			HasSnacks:   req.HasSnacks,
			Description: req.Description,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(pkg))
	})

	r.GET("/packages", func(c *gin.Context) {
		packages, err := svc.GetPackages(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(packages))
	})

	r.GET("/packages/:id", func(c *gin.Context) {
		pkg, err := svc.GetPackageByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(pkg))
	})

	r.PATCH("/packages/:id", func(c *gin.Context) {
		var req updatePackageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.UpdatePackage(c.Request.Context(), c.Param("id"), req.Fields); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})

	r.DELETE("/packages/:id", func(c *gin.Context) {
		if err := svc.DeletePackage(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(true))
	})
}

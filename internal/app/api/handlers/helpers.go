package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bigdiet/backend/internal/app/service/catalog"
	"github.com/bigdiet/backend/internal/app/service/customer"
	"github.com/bigdiet/backend/internal/app/service/portability"
	"github.com/bigdiet/backend/internal/platform/store"
	"github.com/bigdiet/backend/pkg/response"
)

// fail maps domain errors onto HTTP statuses with the standard envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customer.ErrInvalidPhone),
		errors.Is(err, customer.ErrInvalidStatus),
		errors.Is(err, catalog.ErrPackageNotFound),
		errors.Is(err, portability.ErrImport):
		c.JSON(http.StatusBadRequest, response.ErrorT(response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT(response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT(response.APIResponseCodeError, err.Error()))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorT(response.APIResponseCodeBadRequest, err.Error()))
}

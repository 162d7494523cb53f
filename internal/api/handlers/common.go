package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobhive/jobhive/internal/api/middleware"
	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// identityFrom reads the caller identity without aborting; public routes
// use it to branch on authentication state.
func identityFrom(c *gin.Context) (models.Identity, bool) {
	if v, ok := c.Get(middleware.ContextIdentity); ok {
		if ident, ok := v.(models.Identity); ok && ident.Subject != "" {
			return ident, true
		}
	}
	return models.Identity{}, false
}

func requireIdentity(c *gin.Context) (models.Identity, bool) {
	ident, ok := identityFrom(c)
	if !ok {
		writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "Not authenticated", nil))
	}
	return ident, ok
}

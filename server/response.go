package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/errors"
)

// DataResponse is the success envelope for JSON API routes.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as the standard error body. Errors that are
// not AppErrors become E_SSE_FAILURE.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondAccepted sends a 202 wrapping data.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, DataResponse{Data: data})
}

package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/errors"
)

// Clients lists the connected clients in the registry returned by reg.
func Clients(reg func() clients.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := reg()
		if r == nil {
			appErr := errors.StoreUnavailable(nil)
			c.JSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		all, err := r.GetAll(c.Request.Context())
		if err != nil {
			appErr := errors.Wrap(err)
			c.JSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"shared":  r.Shared(),
			"count":   len(all),
			"clients": all,
		})
	}
}

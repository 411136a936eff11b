package middleware

import (
	"clipbounty/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error renders errors recorded via c.Error into the response body.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		be := errutil.BaseError{
			Code:    errutil.StatusInternal,
			Message: "internal server error",
		}
		c.JSON(be.Code.HTTPStatus(), be.JSON())
	}
}

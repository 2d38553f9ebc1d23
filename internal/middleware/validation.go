package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models/dto"
)

// BindJSON binds and validates a JSON body. On failure it writes a 400
// response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

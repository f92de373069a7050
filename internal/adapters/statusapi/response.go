package statusapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, code int, message string, err error) {
	c.Abort()

	body := envelope{Message: message}
	if err != nil {
		body.Error = err.Error()
	}

	c.JSON(code, body)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat/cmd/api/dto"
)

// HealthHandler godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok", Message: "Server is running"})
	}
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/api/handler/v1/response"
)

const version = "1.0"

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.Health{
		Status:  "ok",
		Version: version,
	})
}

package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Status         string `json:"status"`
	Error          string `json:"error"`
	HTTPStatusCode int    `json:"-"`
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.HTTPStatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Status:         "bad request",
		Error:          err.Error(),
		HTTPStatusCode: http.StatusBadRequest,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Status:         "unauthorized",
		Error:          err.Error(),
		HTTPStatusCode: http.StatusUnauthorized,
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Status:         "permission denied",
		Error:          err.Error(),
		HTTPStatusCode: http.StatusForbidden,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		Status:         "not found",
		Error:          fmt.Sprintf("%s with %s %v not found", resource, key, value),
		HTTPStatusCode: http.StatusNotFound,
	}
}

// ErrInternalServerError logs err and hides it from the client.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		Status:         "internal server error",
		Error:          "something went wrong",
		HTTPStatusCode: http.StatusInternalServerError,
	}
}

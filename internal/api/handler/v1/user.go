package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, actor domain.Actor, id uint) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetUser godoc
// @Summary      Get a user
// @Description  Returns the strikes and groups of a user. Users can only read themselves unless they are admins.
// @Tags         users
// @Produce      json
// @Param        userID  path      int  true  "user ID"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	userID, ok := parseID(ctx, "userID")
	if !ok {
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), actor, userID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetUser -> h.svc.GetUser", err, ids{userID: userID})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

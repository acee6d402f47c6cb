package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/api/handler/v1/response"
	"github.com/studentorg/events-api/internal/api/middleware"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/service"
)

var errNoActor = errors.New("no authenticated user")

// validationErrs are rendered as 400 with the sentinel's own message.
var validationErrs = []error{
	service.ErrAlreadyRegistered,
	service.ErrEventClosed,
	service.ErrSignUpDisabled,
	service.ErrRegistrationNotOpen,
	service.ErrRegistrationClosed,
	service.ErrStrikeDelay,
	service.ErrOnlyPrioritized,
	service.ErrAlreadyAttended,
	service.ErrEventFull,
	service.ErrLimitBelowAttendees,
	service.ErrInvalidLimit,
	service.ErrOrderActive,
	service.ErrSignOffDeadlinePassed,
}

// ids carries the path parameters of the request so not found errors can name them.
type ids struct {
	eventID uint
	userID  uint
}

func renderServiceErr(ctx *gin.Context, op string, err error, params ids) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrPermissionDenied))
		return
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "id", params.eventID))
		return
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.RenderErr(ctx, response.ErrNotFound("registration", "user_id", params.userID))
		return
	case errors.Is(err, service.ErrUserNotFound):
		response.RenderErr(ctx, response.ErrNotFound("user", "id", params.userID))
		return
	case errors.Is(err, service.ErrInvalidEvent):
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	for _, target := range validationErrs {
		if errors.Is(err, target) {
			response.RenderErr(ctx, response.ErrBadRequest(target))
			return
		}
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
}

func actorFromContext(ctx *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoActor))
	}

	return actor, ok
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", param, ctx.Param(param))))
		return 0, false
	}

	return uint(id), true
}

package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/api/handler/v1/request"
	"github.com/studentorg/events-api/internal/api/handler/v1/response"
	"github.com/studentorg/events-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, id uint, event domain.Event) (domain.Event, error)
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Only admins can create events.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.EventRequest  true  "event"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/ [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), actor, req.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateEvent -> h.svc.CreateEvent", err, ids{})
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEvent -> h.svc.GetEvent", err, ids{eventID: eventID})
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Replaces the event. A higher limit promotes waiting registrations, a limit below the number of attendees is rejected.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                   true  "event ID"
// @Param        request  body      request.EventRequest  true  "event"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return
	}

	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), actor, eventID, req.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEvent -> h.svc.UpdateEvent", err, ids{eventID: eventID})
		return
	}

	ctx.JSON(http.StatusOK, event)
}

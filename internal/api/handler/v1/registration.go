package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/api/handler/v1/request"
	"github.com/studentorg/events-api/internal/api/handler/v1/response"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, actor domain.Actor, eventID uint, input service.RegisterInput) (domain.Registration, error)
	AddRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint) (domain.Registration, error)
	UpdateRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint, input service.UpdateRegistrationInput) (domain.Registration, error)
	Unregister(ctx context.Context, actor domain.Actor, eventID, userID uint) error
	GetRegistration(ctx context.Context, actor domain.Actor, eventID, userID uint) (domain.Registration, error)
	ListRegistrations(ctx context.Context, actor domain.Actor, eventID uint) ([]domain.Registration, error)
}

type RegistrationHandler struct {
	svc RegistrationService
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  Registers the authenticated user. Admins may register someone else by setting user_id.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                      true   "event ID"
// @Param        request  body      request.RegisterRequest  false  "request body"
// @Success      201      {object}  response.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/ [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return
	}

	var req request.RegisterRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	registration, err := h.svc.Register(ctx.Request.Context(), actor, eventID, service.RegisterInput{
		UserID:     req.UserID,
		AllowPhoto: req.AllowsPhoto(),
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRegister -> h.svc.Register", err, ids{eventID: eventID, userID: actor.UserID})
		return
	}

	ctx.JSON(http.StatusCreated, response.NewRegistration(registration))
}

// HandleAddRegistration godoc
// @Summary      Add a user to an event
// @Description  Admin only. Skips the sign up window and the strike checks.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                             true  "event ID"
// @Param        request  body      request.AddRegistrationRequest  true  "request body"
// @Success      201      {object}  response.Registration
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/add/ [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleAddRegistration(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return
	}

	var req request.AddRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.AddRegistration(ctx.Request.Context(), actor, eventID, req.UserID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleAddRegistration -> h.svc.AddRegistration", err, ids{eventID: eventID, userID: req.UserID})
		return
	}

	ctx.JSON(http.StatusCreated, response.NewRegistration(registration))
}

// HandleListRegistrations godoc
// @Summary      List registrations of an event
// @Description  Admin only. Waiting registrations carry their wait_queue_number.
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {array}   response.Registration
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/ [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleListRegistrations(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return
	}

	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return
	}

	registrations, err := h.svc.ListRegistrations(ctx.Request.Context(), actor, eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListRegistrations -> h.svc.ListRegistrations", err, ids{eventID: eventID})
		return
	}

	ctx.JSON(http.StatusOK, response.NewRegistrations(registrations))
}

// HandleGetRegistration godoc
// @Summary      Get a registration
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Param        userID   path      int  true  "user ID"
// @Success      200      {object}  response.Registration
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/{userID}/ [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleGetRegistration(ctx *gin.Context) {
	actor, eventID, userID, ok := registrationParams(ctx)
	if !ok {
		return
	}

	registration, err := h.svc.GetRegistration(ctx.Request.Context(), actor, eventID, userID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetRegistration -> h.svc.GetRegistration", err, ids{eventID: eventID, userID: userID})
		return
	}

	ctx.JSON(http.StatusOK, response.NewRegistration(registration))
}

// HandleUpdateRegistration godoc
// @Summary      Update a registration
// @Description  Admin only. Moving a registration off the waiting list fails when the event is full.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                                true  "event ID"
// @Param        userID   path      int                                true  "user ID"
// @Param        request  body      request.UpdateRegistrationRequest  true  "request body"
// @Success      200      {object}  response.Registration
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/{userID}/ [put]
// @Security BearerAuth
func (h *RegistrationHandler) HandleUpdateRegistration(ctx *gin.Context) {
	actor, eventID, userID, ok := registrationParams(ctx)
	if !ok {
		return
	}

	var req request.UpdateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.UpdateRegistration(ctx.Request.Context(), actor, eventID, userID, service.UpdateRegistrationInput{
		IsOnWait:    req.IsOnWait,
		HasAttended: req.HasAttended,
		AllowPhoto:  req.AllowPhoto,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateRegistration -> h.svc.UpdateRegistration", err, ids{eventID: eventID, userID: userID})
		return
	}

	ctx.JSON(http.StatusOK, response.NewRegistration(registration))
}

// HandleUnregister godoc
// @Summary      Unregister from an event
// @Description  Users may unregister themselves, admins anyone. The next waiting registration is promoted.
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Param        userID   path      int  true  "user ID"
// @Success      200      {object}  response.Unregistered
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations/{userID}/ [delete]
// @Security BearerAuth
func (h *RegistrationHandler) HandleUnregister(ctx *gin.Context) {
	actor, eventID, userID, ok := registrationParams(ctx)
	if !ok {
		return
	}

	if err := h.svc.Unregister(ctx.Request.Context(), actor, eventID, userID); err != nil {
		renderServiceErr(ctx, "v1.HandleUnregister -> h.svc.Unregister", err, ids{eventID: eventID, userID: userID})
		return
	}

	ctx.JSON(http.StatusOK, response.Unregistered{
		Message: "unregistered",
		EventID: eventID,
		UserID:  userID,
	})
}

func registrationParams(ctx *gin.Context) (domain.Actor, uint, uint, bool) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return domain.Actor{}, 0, 0, false
	}

	eventID, ok := parseID(ctx, "eventID")
	if !ok {
		return domain.Actor{}, 0, 0, false
	}

	userID, ok := parseID(ctx, "userID")
	if !ok {
		return domain.Actor{}, 0, 0, false
	}

	return actor, eventID, userID, true
}

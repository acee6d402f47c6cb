package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentorg/events-api/internal/api/handler/v1/response"
	"github.com/studentorg/events-api/internal/api/middleware"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/service"
)

type fakeEvents struct {
	event   domain.Event
	err     error
	created domain.Event
}

func (f *fakeEvents) CreateEvent(_ context.Context, _ domain.Actor, event domain.Event) (domain.Event, error) {
	f.created = event
	event.ID = 1
	return event, f.err
}

func (f *fakeEvents) GetEvent(context.Context, uint) (domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEvents) UpdateEvent(_ context.Context, _ domain.Actor, id uint, event domain.Event) (domain.Event, error) {
	event.ID = id
	return event, f.err
}

type fakeRegistrations struct {
	registration domain.Registration
	list         []domain.Registration
	err          error

	registerInput service.RegisterInput
	updateInput   service.UpdateRegistrationInput
	unregistered  [2]uint
}

func (f *fakeRegistrations) Register(_ context.Context, actor domain.Actor, eventID uint, input service.RegisterInput) (domain.Registration, error) {
	f.registerInput = input
	r := f.registration
	r.EventID, r.UserID = eventID, actor.UserID
	return r, f.err
}

func (f *fakeRegistrations) AddRegistration(_ context.Context, _ domain.Actor, eventID, userID uint) (domain.Registration, error) {
	r := f.registration
	r.EventID, r.UserID = eventID, userID
	return r, f.err
}

func (f *fakeRegistrations) UpdateRegistration(_ context.Context, _ domain.Actor, eventID, userID uint, input service.UpdateRegistrationInput) (domain.Registration, error) {
	f.updateInput = input
	r := f.registration
	r.EventID, r.UserID = eventID, userID
	return r, f.err
}

func (f *fakeRegistrations) Unregister(_ context.Context, _ domain.Actor, eventID, userID uint) error {
	f.unregistered = [2]uint{eventID, userID}
	return f.err
}

func (f *fakeRegistrations) GetRegistration(context.Context, domain.Actor, uint, uint) (domain.Registration, error) {
	return f.registration, f.err
}

func (f *fakeRegistrations) ListRegistrations(context.Context, domain.Actor, uint) ([]domain.Registration, error) {
	return f.list, f.err
}

func newTestRouter(actor *domain.Actor, events EventService, registrations RegistrationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api/v1", func(ctx *gin.Context) {
		if actor != nil {
			middleware.SetActor(ctx, *actor)
		}
	})

	eh := NewEventHandler(events)
	api.POST("/events/", eh.HandleCreateEvent)
	api.GET("/events/:eventID", eh.HandleGetEvent)
	api.PUT("/events/:eventID", eh.HandleUpdateEvent)

	rh := NewRegistrationHandler(registrations)
	api.GET("/events/:eventID/registrations/", rh.HandleListRegistrations)
	api.POST("/events/:eventID/registrations/", rh.HandleRegister)
	api.POST("/events/:eventID/registrations/add/", rh.HandleAddRegistration)
	api.GET("/events/:eventID/registrations/:userID/", rh.HandleGetRegistration)
	api.PUT("/events/:eventID/registrations/:userID/", rh.HandleUpdateRegistration)
	api.DELETE("/events/:eventID/registrations/:userID/", rh.HandleUnregister)

	uh := NewUserHandler(fakeUsers{5: {ID: 5, Strikes: 1, Groups: []string{"abakus"}}})
	api.GET("/users/:userID", uh.HandleGetUser)

	r.GET("/", HandleHealthcheck)

	return r
}

type fakeUsers map[uint]domain.User

func (f fakeUsers) GetUser(_ context.Context, actor domain.Actor, id uint) (domain.User, error) {
	if !actor.CanManage(id) {
		return domain.User{}, service.ErrPermissionDenied
	}
	u, ok := f[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}
	return u, nil
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var e response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))

	return e
}

var member = &domain.Actor{UserID: 5, Groups: []string{"abakus"}}

func TestHandleHealthcheck(t *testing.T) {
	r := newTestRouter(nil, &fakeEvents{}, &fakeRegistrations{})
	w := do(t, r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0"}`, w.Body.String())
}

func TestHandleRegister(t *testing.T) {
	wait := 2
	regs := &fakeRegistrations{registration: domain.Registration{ID: 9, IsOnWait: true, WaitQueueNumber: &wait}}
	r := newTestRouter(member, &fakeEvents{}, regs)

	w := do(t, r, http.MethodPost, "/api/v1/events/3/registrations/", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, regs.registerInput.AllowPhoto)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 9, body["registration_id"])
	assert.EqualValues(t, 3, body["event_id"])
	assert.EqualValues(t, 5, body["user_id"])
	assert.Equal(t, true, body["is_on_wait"])
	assert.EqualValues(t, 2, body["wait_queue_number"])
	assert.NotContains(t, body, "queue_position")

	w = do(t, r, http.MethodPost, "/api/v1/events/3/registrations/", `{"allow_photo": false, "user_id": 8}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.RegisterInput{UserID: 8, AllowPhoto: false}, regs.registerInput)
}

func TestHandleRegister_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"duplicate", fmt.Errorf("s.repo.InEventTx -> %w", service.ErrAlreadyRegistered), http.StatusBadRequest, service.ErrAlreadyRegistered.Error()},
		{"closed", service.ErrEventClosed, http.StatusBadRequest, service.ErrEventClosed.Error()},
		{"window", service.ErrRegistrationNotOpen, http.StatusBadRequest, service.ErrRegistrationNotOpen.Error()},
		{"forbidden", service.ErrPermissionDenied, http.StatusForbidden, service.ErrPermissionDenied.Error()},
		{"no event", fmt.Errorf("x -> %w", service.ErrEventNotFound), http.StatusNotFound, "event with id 3 not found"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(member, &fakeEvents{}, &fakeRegistrations{err: tt.err})
			w := do(t, r, http.MethodPost, "/api/v1/events/3/registrations/", "")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decodeErr(t, w).Error)
		})
	}
}

func TestHandlers_RequireActor(t *testing.T) {
	r := newTestRouter(nil, &fakeEvents{}, &fakeRegistrations{})

	w := do(t, r, http.MethodPost, "/api/v1/events/3/registrations/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/events/3/registrations/5/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlers_InvalidIDs(t *testing.T) {
	r := newTestRouter(member, &fakeEvents{}, &fakeRegistrations{})

	for _, path := range []string{
		"/api/v1/events/abc",
		"/api/v1/events/0",
		"/api/v1/events/3/registrations/x/",
	} {
		w := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHandleAddRegistration(t *testing.T) {
	regs := &fakeRegistrations{registration: domain.Registration{ID: 4}}
	r := newTestRouter(&domain.Actor{UserID: 1, IsAdmin: true}, &fakeEvents{}, regs)

	w := do(t, r, http.MethodPost, "/api/v1/events/3/registrations/add/", `{"user_id": 12}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":12`)

	w = do(t, r, http.MethodPost, "/api/v1/events/3/registrations/add/", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpdateRegistration(t *testing.T) {
	regs := &fakeRegistrations{registration: domain.Registration{ID: 4, HasAttended: true}}
	r := newTestRouter(&domain.Actor{UserID: 1, IsAdmin: true}, &fakeEvents{}, regs)

	w := do(t, r, http.MethodPut, "/api/v1/events/3/registrations/7/", `{"has_attended": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, regs.updateInput.HasAttended)
	assert.True(t, *regs.updateInput.HasAttended)
	assert.Nil(t, regs.updateInput.IsOnWait)

	w = do(t, r, http.MethodPut, "/api/v1/events/3/registrations/7/", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	regs.err = service.ErrAlreadyAttended
	w = do(t, r, http.MethodPut, "/api/v1/events/3/registrations/7/", `{"has_attended": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrAlreadyAttended.Error(), decodeErr(t, w).Error)

	regs.err = service.ErrRegistrationNotFound
	w = do(t, r, http.MethodPut, "/api/v1/events/3/registrations/7/", `{"is_on_wait": false}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "registration with user_id 7 not found", decodeErr(t, w).Error)
}

func TestHandleUnregister(t *testing.T) {
	regs := &fakeRegistrations{}
	r := newTestRouter(member, &fakeEvents{}, regs)

	w := do(t, r, http.MethodDelete, "/api/v1/events/3/registrations/5/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]uint{3, 5}, regs.unregistered)

	regs.err = service.ErrOrderActive
	w = do(t, r, http.MethodDelete, "/api/v1/events/3/registrations/5/", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListRegistrations(t *testing.T) {
	regs := &fakeRegistrations{list: []domain.Registration{{ID: 1}, {ID: 2, IsOnWait: true}}}
	r := newTestRouter(&domain.Actor{UserID: 1, IsAdmin: true}, &fakeEvents{}, regs)

	w := do(t, r, http.MethodGet, "/api/v1/events/3/registrations/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body []response.Registration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestHandleCreateEvent(t *testing.T) {
	events := &fakeEvents{}
	r := newTestRouter(&domain.Actor{UserID: 1, IsAdmin: true}, events, &fakeRegistrations{})

	body := `{
		"title": "Bedpres",
		"start_date": "2026-06-01T18:00:00Z",
		"end_date": "2026-06-01T20:00:00Z",
		"limit": 40,
		"priority_pools": [{"groups": ["abakus"]}],
		"is_paid_event": true,
		"paid_information": {"price": 200, "paytime_seconds": 7200}
	}`
	w := do(t, r, http.MethodPost, "/api/v1/events/", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 40, events.created.Limit)
	assert.Equal(t, 2*time.Hour, events.created.PaidInformation.Paytime)

	w = do(t, r, http.MethodPost, "/api/v1/events/", `{"title": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	events.err = fmt.Errorf("%w: %w", service.ErrInvalidEvent, errors.New("start_date must be before end_date"))
	w = do(t, r, http.MethodPost, "/api/v1/events/", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid event: start_date must be before end_date", decodeErr(t, w).Error)
}

func TestHandleUpdateEvent_LimitBelowAttendees(t *testing.T) {
	events := &fakeEvents{err: service.ErrLimitBelowAttendees}
	r := newTestRouter(&domain.Actor{UserID: 1, IsAdmin: true}, events, &fakeRegistrations{})

	body := `{"title": "Bedpres", "start_date": "2026-06-01T18:00:00Z", "end_date": "2026-06-01T20:00:00Z", "limit": 1}`
	w := do(t, r, http.MethodPut, "/api/v1/events/3", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrLimitBelowAttendees.Error(), decodeErr(t, w).Error)
}

func TestHandleGetEvent(t *testing.T) {
	events := &fakeEvents{event: domain.Event{ID: 3, Title: "Bedpres"}}
	r := newTestRouter(member, events, &fakeRegistrations{})

	w := do(t, r, http.MethodGet, "/api/v1/events/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Bedpres"`)

	events.err = service.ErrEventNotFound
	w = do(t, r, http.MethodGet, "/api/v1/events/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetUser(t *testing.T) {
	r := newTestRouter(member, &fakeEvents{}, &fakeRegistrations{})

	w := do(t, r, http.MethodGet, "/api/v1/users/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"strikes":1`)

	w = do(t, r, http.MethodGet, "/api/v1/users/6", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := &domain.Actor{UserID: 1, IsAdmin: true}
	r = newTestRouter(admin, &fakeEvents{}, &fakeRegistrations{})
	w = do(t, r, http.MethodGet, "/api/v1/users/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user with id 6 not found", decodeErr(t, w).Error)
}

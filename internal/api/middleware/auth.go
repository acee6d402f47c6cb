package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studentorg/events-api/internal/api/handler/v1/response"
	"github.com/studentorg/events-api/internal/domain"
	"github.com/studentorg/events-api/internal/pkg/jwthelper"
)

const actorKey = "actor"

var (
	errMissingToken      = errors.New("missing bearer token")
	errUserAgentMismatch = errors.New("token was issued to another user agent")
)

type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uint) (domain.Actor, error)
}

type Authenticator struct {
	jwtKey   []byte
	resolver ActorResolver
}

func NewAuthenticator(jwtKey string, resolver ActorResolver) *Authenticator {
	return &Authenticator{
		jwtKey:   []byte(jwtKey),
		resolver: resolver,
	}
}

// VerifyJWT rejects requests without a valid bearer token, or whose token is bound to a
// different User-Agent, and stores the resolved actor on the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.jwtKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		// Tokens minted without a user agent are usable from any client.
		if claims.UserAgent != "" && claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserAgentMismatch))
			return
		}

		actor, err := a.resolver.ResolveActor(ctx.Request.Context(), claims.UserID)
		if err != nil {
			err = fmt.Errorf("middleware.VerifyJWT -> a.resolver.ResolveActor -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		ctx.Set(actorKey, actor)
		ctx.Next()
	}
}

func ActorFromContext(ctx *gin.Context) (domain.Actor, bool) {
	v, ok := ctx.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}

	actor, ok := v.(domain.Actor)

	return actor, ok
}

// SetActor is used by tests that mount handlers without the authenticator.
func SetActor(ctx *gin.Context, actor domain.Actor) {
	ctx.Set(actorKey, actor)
}

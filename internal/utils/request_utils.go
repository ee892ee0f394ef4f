package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"camphub/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to
// the HTTP response with the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "debug", "Returning response")
	ctx.JSON(statusCode, response)
}

// AbortWithError funnels a failure into the error normalizer. Handlers never
// write error bodies themselves; they attach the error and stop.
func AbortWithError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}

// ParseIDParam reads a uuid path parameter. A malformed id is reported as an
// InvalidResourceIDError, which the normalizer renders as a 404 with the
// offending id, matching the behavior of a failed lookup.
func ParseIDParam(ctx *gin.Context, name string) (uuid.UUID, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &schemas.InvalidResourceIDError{ID: raw, Err: err}
	}
	return id, nil
}

// GetPrincipal returns the account the access guard attached to the request.
// It must only be called on routes mounted behind RequireAuth.
func GetPrincipal(ctx *gin.Context) *schemas.Account {
	return ctx.MustGet(PrincipalKey.String()).(*schemas.Account)
}

// GetPayload returns the validated payload stored by the validation
// middleware.
func GetPayload[T any](ctx *gin.Context) *T {
	return ctx.MustGet(SanitizedPayloadKey.String()).(*T)
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"camphub/internal/schemas"
	"camphub/internal/utils"
)

// ValidateAndSanitizeStruct binds the request body into a fresh T, strips
// markup from its string fields, validates it and stores it in the context
// for the handler. Failures go through the error normalizer: an unreadable
// body as a generic bad request, validation failures as the per-field
// message list.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := new(T)
		if err := c.ShouldBindJSON(payload); err != nil {
			utils.AbortWithError(c, schemas.NewCustomError(http.StatusBadRequest, "Invalid request body"))
			return
		}

		validator := utils.GetValidator()
		validator.SanitizeStruct(payload)

		if err := validator.Validate.Struct(payload); err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"camphub/internal/schemas"
	"camphub/internal/utils"
)

const pgUniqueViolation = "23505"

// ErrorNormalizer is the single point producing client-visible error
// output. Handlers and guards attach errors to the context and abort; this
// middleware translates whatever arrived into the uniform error envelope.
// Collaborator failure detail is logged, never echoed to the caller.
func ErrorNormalizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := normalize(err)

		utils.LogMessageWithFieldsAndError(c, "error", fmt.Sprintf("Returning %d", status), err)
		c.JSON(status, schemas.ErrorResponse{Success: false, Error: message})
	}
}

// normalize maps a failure onto its status and error payload. The payload
// is a string for everything except validation failures, which list the
// per-field messages.
func normalize(err error) (int, any) {
	var customErr *schemas.CustomError
	if errors.As(err, &customErr) {
		return customErr.Status, customErr.Message
	}

	var invalidID *schemas.InvalidResourceIDError
	if errors.As(err, &invalidID) {
		notFound := schemas.NewResourceNotFound(invalidID.ID)
		return notFound.Status, notFound.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, len(validationErrs))
		for i, fieldErr := range validationErrs {
			messages[i] = fieldMessage(fieldErr)
		}
		return http.StatusBadRequest, messages
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return http.StatusBadRequest, "Duplicate field value entered"
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, "Resource not found"
	}

	return http.StatusInternalServerError, "Server Error"
}

func fieldMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", field)
	case "email":
		return fmt.Sprintf("Please add a valid %s", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "lte":
		return fmt.Sprintf("%s can not be more than %s", field, fieldErr.Param())
	case "url":
		return fmt.Sprintf("Please add a valid %s", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

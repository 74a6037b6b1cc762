package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/talgatov/auth-api/internal/domain"
)

// Caller-facing messages. Fixed and generic on purpose: auth failures
// never say which part was wrong.
const (
	MsgNotFound           = "The requested URL was not found."
	MsgMethodNotAllowed   = "Invalid API method."
	MsgUnauthenticated    = "Authentication failed. Please login or create an account to continue"
	MsgForbidden          = "You do not have permission to access this resource."
	MsgRateLimited        = "Too many attempts. Please try again in a while."
	MsgInvalidCredentials = "Invalid credentials"
	MsgDuplicateEmail     = "The email has already been taken."
	MsgValidationFailed   = "The given data was invalid."
	MsgInternal           = "Something went wrong. Please try again later."
)

// Mapper is the one place failures become HTTP responses. Every
// handler, middleware and router fallback renders through it so the
// envelope shape never varies.
type Mapper struct {
	logger *slog.Logger
	debug  bool
}

// NewMapper builds a mapper. With debug set (local env) the 500
// envelope appends the underlying error text; in production it stays
// generic.
func NewMapper(logger *slog.Logger, debug bool) *Mapper {
	return &Mapper{logger: logger.With("component", "response_mapper"), debug: debug}
}

// Render writes the envelope and status for err and aborts the request.
func (m *Mapper) Render(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var bre *domain.BusinessRuleError
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		m.logger.WarnContext(ctx, "business rule violation", "error", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, FailWithFields(
			MsgDuplicateEmail,
			map[string][]string{"email": {MsgDuplicateEmail}},
		))

	case errors.As(err, &bre):
		m.logger.WarnContext(ctx, "business rule violation", "error", err)
		if len(bre.Fields) > 0 {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, FailWithFields(bre.Message, bre.Fields))
		} else {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Fail(bre.Message))
		}

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, Fail(MsgInvalidCredentials))

	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrTokenInvalid):
		m.logger.WarnContext(ctx, "unauthenticated request", "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusUnauthorized, Fail(MsgUnauthenticated))

	case errors.Is(err, domain.ErrUnauthorized):
		m.logger.WarnContext(ctx, "forbidden request", "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusForbidden, Fail(MsgForbidden))

	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		m.logger.WarnContext(ctx, "not found", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusNotFound, Fail(MsgNotFound))

	case errors.Is(err, domain.ErrMethodNotAllowed):
		m.logger.WarnContext(ctx, "method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Fail(MsgMethodNotAllowed))

	case errors.Is(err, domain.ErrRateLimited):
		m.logger.WarnContext(ctx, "rate limited", "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, Fail(MsgRateLimited))

	default:
		m.logger.ErrorContext(ctx, "unexpected error", "error", err, "path", c.Request.URL.Path)
		msg := MsgInternal
		if m.debug {
			msg = fmt.Sprintf("%s %v", MsgInternal, err)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, Fail(msg))
	}
}

// RenderValidation maps request-binding failures to the 422 validation
// envelope. Non-validator errors (malformed JSON, wrong types) get the
// generic message with no field map.
func (m *Mapper) RenderValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, FailWithFields(MsgValidationFailed, FieldErrors(verrs)))
		return
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Fail(MsgValidationFailed))
}

// FieldErrors flattens validator errors into the envelope's
// field → messages map. Field names come from the json tags (the
// router registers a tag name func on the binding validator).
func FieldErrors(verrs validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", fe.Field())
	case "not_disposable":
		return fmt.Sprintf("The %s provider is not allowed. Please use a valid email address.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

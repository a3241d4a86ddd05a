package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type APIError struct {
	Code    utils.Code         `json:"code"`
	Message string             `json:"message"`
	Errors  []utils.FieldError `json:"errors,omitempty"`
}

// writeError answers with the AppError contract. The error is attached to the
// gin context so RequestLogger records it; 5xx details never reach the client.
func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg := ae.Message
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			msg = http.StatusText(status)
		}
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: msg,
			Errors:  ae.Fields,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// bindJSON decodes the body and answers 400 with field details on failure.
func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, bindError(op, err))
		return false
	}
	return true
}

func bindError(op string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]utils.FieldError, 0, len(ve))
		for _, fe := range ve {
			name := lowerFirst(fe.Field())
			fields = append(fields, utils.FieldError{
				Field:   name,
				Rule:    fe.Tag(),
				Message: fieldMessage(name, fe),
			})
		}
		return utils.Invalid(op, "validation failed", fields, err)
	}
	return utils.E(utils.CodeInvalidArgument, op, "invalid request body", err)
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	case "oneof":
		return name + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return name + " must be a valid URL"
	default:
		return name + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func paramInt64(c *gin.Context, op, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, utils.Invalid(op, "invalid "+name, []utils.FieldError{{
			Field: name, Rule: "numeric", Message: name + " must be a positive integer",
		}}, err))
		return 0, false
	}
	return id, true
}

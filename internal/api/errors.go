package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/internal/orm"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Коды ошибок в ответах
const (
	ErrRequired     = "required"
	ErrInvalidValue = "invalid_value"
	ErrEnumInvalid  = "enum_invalid"
	ErrRefNotFound  = "ref_not_found"
	ErrReadOnly     = "readonly_field"
	ErrUnknownField = "unknown_field"
	ErrBadFilter    = "invalid_filter"
	ErrNotFound     = "not_found"
	ErrBadRequest   = "bad_request"
	ErrUnavailable  = "store_unavailable"
	ErrInternal     = "internal"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

func validationCode(ve *orm.ValidationError) string {
	c := ve.Constraint
	switch {
	case c == "readonly":
		return ErrReadOnly
	case c == "required":
		return ErrRequired
	case strings.Contains(c, "ref["):
		return ErrRefNotFound
	case strings.Contains(c, "enum["):
		return ErrEnumInvalid
	default:
		return ErrInvalidValue
	}
}

// respondError переводит ошибки маппера в HTTP-статус и тело ответа.
func respondError(c *gin.Context, err error) {
	var (
		unknown  *orm.UnknownFieldError
		badFlt   *orm.InvalidFilterError
		notFound *orm.NotFoundError
		storeErr *orm.StoreError
	)

	if ves := orm.ValidationErrors(err); len(ves) > 0 {
		out := make([]FieldError, 0, len(ves))
		for _, ve := range ves {
			out = append(out, ferr(validationCode(ve), ve.Field, ve.Reason))
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": out})
		return
	}

	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrUnknownField, unknown.Field, err.Error())}})
	case errors.As(err, &badFlt):
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrBadFilter, badFlt.Field, err.Error())}})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"errors": []FieldError{ferr(ErrNotFound, "", notFound.Type+" not found")}})
	case errors.As(err, &storeErr):
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("store failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"errors": []FieldError{ferr(ErrUnavailable, "", "storage is unavailable")}})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []FieldError{ferr(ErrInternal, "", "internal error")}})
	}
}

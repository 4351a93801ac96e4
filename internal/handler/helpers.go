package handler

import (
	"errors"
	"net/http"
	"reflect"

	"cajaledger/internal/apierror"
	"cajaledger/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the business error taxonomy to HTTP statuses. Anything
// outside the taxonomy is pushed to the error middleware, which logs it and
// answers 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var (
		ve *apperr.ValidationError
		ce *apperr.ConflictError
		nf *apperr.NotFoundError
		is *apperr.InvalidStateError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{ve.Field: ve.Reason}))
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, apierror.New(ce.Msg))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Msg))
	case errors.As(err, &is):
		c.JSON(http.StatusConflict, apierror.New(is.Msg))
	default:
		_ = c.Error(err)
	}
}

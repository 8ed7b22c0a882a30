package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tourdesk/internal/apierror"
	"tourdesk/internal/pricing"
	"tourdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs struct validation, writing
// the 400 response itself. Returns false when the request is rejected.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("malformed request body: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters: "+err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters: "+err.Error()))
		return false
	}
	return true
}

// pathID parses the :id path parameter, writing the 400 response on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service-layer errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case service.IsStateConflict(err):
		var sc *service.StateConflictError
		errors.As(err, &sc)
		c.JSON(http.StatusConflict, apierror.NewConflict(err.Error(), sc.Current))
	case errors.Is(err, pricing.ErrRateOutOfRange),
		errors.Is(err, service.ErrNoRatedCategories),
		errors.Is(err, service.ErrConfirmRequired):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, apierror.New("invalid credentials"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

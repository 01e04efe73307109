package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/star-temple/starprint/internal/presentation/http/dto/response"
	"github.com/star-temple/starprint/internal/presentation/http/middleware"
	"github.com/star-temple/starprint/pkg/apperror"
)

// GetStation extracts the authenticated station from the Gin context
func GetStation(c *gin.Context) string {
	return middleware.GetStation(c)
}

// bindError writes a 400 for a failed ShouldBind call. Validator failures
// are reported per field.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.Error(c, apperror.NewBadRequestError("Invalid request: "+err.Error()))
		return
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: "failed on " + fe.Tag(),
		})
	}
	response.Error(c, apperror.NewValidationError(fields))
}

// fieldPath drops the root struct name: "PrintReceiptRequest.Receipt.ReceiptNo"
// becomes "Receipt.ReceiptNo".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// parseIntParam reads a positive integer path parameter.
func parseIntParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

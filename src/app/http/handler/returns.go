package handler

import (
	"errors"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"returnsdesk/src/app/http/dto"
	"returnsdesk/src/app/http/response"
	"returnsdesk/src/app/middleware"
	"returnsdesk/src/core/usecase"
)

// ReturnsHandler serves the return request form.
type ReturnsHandler struct {
	returnService *usecase.ReturnService
}

func NewReturnsHandler(returnService *usecase.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{returnService: returnService}
}

// Options lists the reasons and refund methods the form offers.
// GET /v1/returns/options
func (h *ReturnsHandler) Options(c *gin.Context) {
	response.OK(c, h.returnService.Options())
}

// Submit runs the form's submit action against the posted draft.
// Nothing is stored; the response carries the notifications the form emitted.
// POST /v1/returns/submit
func (h *ReturnsHandler) Submit(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	var req dto.SubmitReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			response.ValidationError(c, jsonFieldName(verrs[0].Field()), "value is not one of the allowed options", requestID)
			return
		}
		response.BadRequest(c, "invalid payload", requestID)
		return
	}

	res, err := h.returnService.Submit(c.Request.Context(), req.ToDraft())
	if err != nil {
		c.Error(err)
		response.FromDomainError(c, err, requestID)
		return
	}

	if !res.Closed {
		response.UnprocessableEntity(c, res)
		return
	}
	response.OK(c, res)
}

// jsonFieldName maps a struct field name to the payload's camelCase key.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

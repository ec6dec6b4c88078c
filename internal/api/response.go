package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// mapServiceError translates a service error into the matching HTTP status,
// keeping the service's code and message. Anything unrecognized becomes a
// 500 with a generic body.
func mapServiceError(c echo.Context, err error) error {
	var serr *service.ServiceError
	if !errors.As(err, &serr) {
		return errorJSON(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(serr, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(serr, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(serr, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(serr, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(serr, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	return errorJSON(c, status, serr.Code, serr.Message)
}
